package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/gamma"
)

// config holds the settings of one run. It is filled from defaults, then an
// optional TOML preset, then explicitly set flags.
type config struct {
	Gamma      string `toml:"gamma"`
	Suffix     string `toml:"suffix"`
	Workers    int    `toml:"workers"`
	BandHeight int    `toml:"band_height"`
	Kernel     string `toml:"kernel"`
	GPU        bool   `toml:"gpu"`
	Jobs       int    `toml:"jobs"`
	Verbose    bool   `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Gamma:  "auto",
		Suffix: "_gamma",
		Kernel: gamma.KernelTable.String(),
		GPU:    true,
		Jobs:   2,
	}
}

// loadConfig decodes a TOML preset into cfg. Unknown keys are rejected.
func loadConfig(path string, cfg *config) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config %s: %s", path, strict.String())
		}
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// gammaArg is a parsed -gamma value.
type gammaArg struct {
	value float64
	auto  bool
}

// parseGamma accepts "auto", a decimal number or a fraction such as "1/2.2".
func parseGamma(s string) (gammaArg, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") {
		return gammaArg{auto: true}, nil
	}

	var (
		v   float64
		err error
	)
	if num, den, ok := strings.Cut(s, "/"); ok {
		v, err = parseFraction(num, den)
	} else {
		v, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		return gammaArg{}, fmt.Errorf("invalid gamma %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return gammaArg{}, fmt.Errorf("invalid gamma %q: %w", s, gamma.ErrInvalidGamma)
	}
	return gammaArg{value: v}, nil
}

func parseFraction(num, den string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, errors.New("division by zero")
	}
	return n / d, nil
}

// processorOptions translates cfg into processor options.
func (c config) processorOptions() ([]gamma.ProcessorOption, error) {
	k, ok := gamma.ParseKernel(c.Kernel)
	if !ok {
		return nil, fmt.Errorf("unknown kernel %q (want table or exact)", c.Kernel)
	}
	return []gamma.ProcessorOption{
		gamma.WithWorkers(c.Workers),
		gamma.WithBandHeight(c.BandHeight),
		gamma.WithKernel(k),
		gamma.WithAcceleration(c.GPU),
	}, nil
}
