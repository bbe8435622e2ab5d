// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pngmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// chunk encodes one PNG chunk with a valid CRC.
func chunk(name string, payload []byte) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.BigEndian, uint32(len(payload)))
	b.WriteString(name)
	b.Write(payload)
	crc := crc32.NewIEEE()
	crc.Write([]byte(name))
	crc.Write(payload)
	_ = binary.Write(&b, binary.BigEndian, crc.Sum32())
	return b.Bytes()
}

func u32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

// pngStream builds a signature followed by IHDR, the given chunks and IEND.
func pngStream(chunks ...[]byte) []byte {
	var b bytes.Buffer
	b.WriteString(signature)
	b.Write(chunk("IHDR", make([]byte, 13)))
	for _, c := range chunks {
		b.Write(c)
	}
	b.Write(chunk("IEND", nil))
	return b.Bytes()
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantGAMA     uint32
		wantSig      bool
		wantMetadata bool
		wantGamma    float64
	}{
		{"no chunks", pngStream(), 0, false, false, 1},
		{"gAMA 1.0", pngStream(chunk("gAMA", u32(100000))), 100000, true, false, 1 / 2.2},
		{"gAMA matching display", pngStream(chunk("gAMA", u32(45455))), 45455, false, false, 1},
		{"gAMA 1.8", pngStream(chunk("gAMA", u32(55556))), 55556, true, false, 100000 / 2.2 / 55556},
		{"gAMA too small", pngStream(chunk("gAMA", u32(15))), 0, false, false, 1},
		{"gAMA too large", pngStream(chunk("gAMA", u32(625000001))), 0, false, false, 1},
		{"gAMA wrong size", pngStream(chunk("gAMA", []byte{0, 1, 134, 160, 0})), 0, false, false, 1},
		{"sRGB overrides gAMA", pngStream(chunk("gAMA", u32(100000)), chunk("sRGB", []byte{0})), 100000, false, false, 1},
		{"iCCP overrides gAMA", pngStream(chunk("iCCP", []byte("x\x00\x00")), chunk("gAMA", u32(100000))), 100000, false, false, 1},
		{"text metadata", pngStream(chunk("tEXt", []byte("Title\x00cat"))), 0, false, true, 1},
		{"exif metadata", pngStream(chunk("eXIf", []byte("MM\x00*"))), 0, false, true, 1},
		{"last gAMA wins", pngStream(chunk("gAMA", u32(100000)), chunk("gAMA", u32(45455))), 45455, false, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Extract(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if info.GAMA != tt.wantGAMA {
				t.Errorf("GAMA = %d, want %d", info.GAMA, tt.wantGAMA)
			}
			if info.HasMetadata != tt.wantMetadata {
				t.Errorf("HasMetadata = %v, want %v", info.HasMetadata, tt.wantMetadata)
			}
			g, ok := info.Correction()
			if ok != tt.wantSig {
				t.Errorf("Correction significant = %v, want %v", ok, tt.wantSig)
			}
			if math.Abs(g-tt.wantGamma) > 1e-5 {
				t.Errorf("Correction = %v, want %v", g, tt.wantGamma)
			}
		})
	}
}

func TestExtractStopsAtIEND(t *testing.T) {
	data := pngStream()
	data = append(data, chunk("tEXt", []byte("after\x00end"))...)
	info, err := Extract(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if info.HasMetadata {
		t.Error("chunks after IEND should be ignored")
	}
}

func TestExtractTruncated(t *testing.T) {
	full := pngStream(chunk("tEXt", []byte("a\x00b")), chunk("gAMA", u32(100000)))
	// Cut inside the gAMA payload: metadata already seen, gamma not.
	cut := bytes.Index(full, []byte("gAMA")) + 6
	info, err := Extract(bytes.NewReader(full[:cut]))
	if err != nil {
		t.Fatalf("truncated input should not fail: %v", err)
	}
	if !info.HasMetadata {
		t.Error("metadata before the cut should be reported")
	}
	if _, ok := info.Correction(); ok {
		t.Error("incomplete gAMA should not be used")
	}
}

func TestExtractNotPNG(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("\x89PN"), []byte("GIF89a.........")} {
		if _, err := Extract(bytes.NewReader(data)); !errors.Is(err, ErrNotPNG) {
			t.Errorf("Extract(%q) err = %v, want ErrNotPNG", data, err)
		}
	}
}

func TestExtractEncodedPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatal(err)
	}
	info, err := Extract(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := info.Correction(); ok || info.HasMetadata {
		t.Errorf("plain encoder output should carry no hints: %+v", info)
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.png")
	if err := os.WriteFile(path, pngStream(chunk("gAMA", u32(100000))), 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := ExtractFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if g, ok := info.Correction(); !ok || math.Abs(g-1/2.2) > 1e-5 {
		t.Errorf("Correction = %v, %v", g, ok)
	}

	if _, err := ExtractFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
