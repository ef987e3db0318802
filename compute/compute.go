// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package compute - grid compute backend contract
//
// A backend owns a 2-D grid of 4-channel 32 bit cells and runs named
// kernels over it.  Every dispatch is double buffered: the kernel sees
// the previous buffer contents and produces the next, so a kernel is
// always a pure per-cell function and cannot race with its own writes.
//
// The Emulator in this package executes kernels on the CPU and is the
// reference implementation; a hardware compute-shader backend would
// implement the same interface and treat registration as compiling the
// equivalent shader program.
package compute

// Channels - 32 bit words per cell
const Channels = 4

// Cell - one grid cell ("texel")
type Cell [Channels]uint32

// Grid - read-only view of the previous buffer during a dispatch
type Grid interface {
	// Cell - previous contents at (x, y)
	Cell(x, y int) Cell

	// Dimensions - grid width and height
	Dimensions() (width int, height int)
}

// Uniforms - scalar parameters bound for one dispatch, by name
type Uniforms map[string]int32

// KernelFunc - pure per-cell transform
//
// reads any cells of the previous buffer through prev and returns the
// new contents for (x, y); it must not retain prev
type KernelFunc func(prev Grid, x, y int, u Uniforms) Cell

// Backend - the shared compute resource
//
// not safe for concurrent use; the owner must serialise access
type Backend interface {
	// Register - attach a named kernel and declare its uniforms
	Register(name string, kernel KernelFunc, uniformNames ...string) error

	// Dispatch - run a named kernel over the whole grid repeat
	// times, binding uniform values in declaration order; the
	// buffers swap after every repetition
	Dispatch(name string, repeat int, uniformValues ...int32) error

	// Write - replace the whole buffer, row major
	Write(cells []Cell) error

	// Read - copy a rectangular window of the current buffer,
	// row major
	Read(x, y, width, height int) ([]Cell, error)

	// Dimensions - grid width and height
	Dimensions() (width int, height int)
}
