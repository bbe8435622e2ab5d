// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pngmeta reads gamma and metadata hints from PNG chunk headers.
//
// The image/png decoder ignores the gAMA chunk, so an image written with a
// non-standard gamma displays too light or too dark. Extract walks the chunk
// list without decoding pixel data and reports the exponent that restores
// the intended appearance on an sRGB display.
package pngmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const signature = "\x89PNG\r\n\x1a\n"

// Range of gAMA values accepted by libpng.
const (
	minGAMA = 16
	maxGAMA = 625000000
)

// displayGamma is the gamma of the sRGB display the correction targets.
const displayGamma = 2.2

// ErrNotPNG is returned when the input does not start with the PNG signature.
var ErrNotPNG = errors.New("pngmeta: not a PNG")

// Info describes the chunks found in a PNG stream.
type Info struct {
	// GAMA is the raw gAMA value (gamma times 100000), or 0 if the image has
	// no valid gAMA chunk.
	GAMA uint32

	// SRGB and ICCP report an sRGB or iCCP chunk. Either one means the colour
	// space is described elsewhere and the gAMA value is ignored.
	SRGB bool
	ICCP bool

	// HasMetadata reports a tEXt, zTXt, iTXt, tIME or eXIf chunk.
	HasMetadata bool

	correction  float32
	significant bool
}

// Correction returns the exponent to apply to the decoded pixels and whether
// it differs noticeably from 1. Without a usable gAMA chunk it returns
// (1, false).
func (i Info) Correction() (float64, bool) {
	if !i.significant {
		return 1, false
	}
	return float64(i.correction), true
}

// Extract reads PNG chunk headers from r up to IEND. Chunk payloads other
// than gAMA are skipped. A stream that ends early yields what was read so
// far without an error.
func Extract(r io.Reader) (Info, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		if isTruncated(err) {
			return Info{}, ErrNotPNG
		}
		return Info{}, fmt.Errorf("pngmeta: read signature: %w", err)
	}
	if string(sig[:]) != signature {
		return Info{}, ErrNotPNG
	}

	var info Info
	if err := walk(r, &info); err != nil && !isTruncated(err) {
		return Info{}, fmt.Errorf("pngmeta: %w", err)
	}
	if info.SRGB || info.ICCP {
		info.correction = 1
		info.significant = false
	}
	return info, nil
}

// ExtractFile opens path and calls Extract.
func ExtractFile(path string) (Info, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Info{}, fmt.Errorf("pngmeta: open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Extract(f)
}

func walk(r io.Reader, info *Info) error {
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return err
		}
		size := int64(binary.BigEndian.Uint32(hdr[0:4]))
		skip := size

		switch string(hdr[4:8]) {
		case "tEXt", "zTXt", "iTXt", "tIME", "eXIf":
			info.HasMetadata = true
		case "gAMA":
			if size == 4 {
				var v [4]byte
				if _, err := io.ReadFull(r, v[:]); err != nil {
					return err
				}
				info.setGAMA(binary.BigEndian.Uint32(v[:]))
				skip = 0
			}
		case "sRGB":
			info.SRGB = true
		case "iCCP":
			info.ICCP = true
		case "IEND":
			return nil
		}

		// Payload and CRC.
		if _, err := io.CopyN(io.Discard, r, skip+4); err != nil {
			return err
		}
	}
}

// setGAMA records a gAMA chunk. Values outside the libpng range are ignored.
func (i *Info) setGAMA(v uint32) {
	if v < minGAMA || v > maxGAMA {
		return
	}
	i.GAMA = v
	i.correction = 100000 / float32(displayGamma) / float32(v)
	i.significant = int(i.correction*100+0.5) != 100
}

func isTruncated(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
