// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

// Package gpu is empty when built with the nogpu tag; processing stays on
// the CPU.
package gpu

// SetDeviceProvider is a no-op without GPU support.
func SetDeviceProvider(any) error { return nil }

// Available always reports false without GPU support.
func Available() bool { return false }
