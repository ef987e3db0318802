// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compute

import (
	"github.com/ternarybit/tritpow/fault"
)

// Emulator - sequential CPU implementation of Backend
type Emulator struct {
	width   int
	height  int
	prev    []Cell
	next    []Cell
	kernels map[string]*registeredKernel

	// instrumentation
	dispatches uint64
	writes     uint64
}

type registeredKernel struct {
	kernel       KernelFunc
	uniformNames []string
}

// read-only view handed to kernels
type gridView struct {
	cells  []Cell
	width  int
	height int
}

func (g *gridView) Cell(x, y int) Cell {
	return g.cells[y*g.width+x]
}

func (g *gridView) Dimensions() (int, int) {
	return g.width, g.height
}

// NewEmulator - allocate a zeroed grid
func NewEmulator(width int, height int) (*Emulator, error) {

	if width <= 0 || height <= 0 {
		return nil, fault.ErrInvalidGridHeight
	}

	return &Emulator{
		width:   width,
		height:  height,
		prev:    make([]Cell, width*height),
		next:    make([]Cell, width*height),
		kernels: make(map[string]*registeredKernel),
	}, nil
}

// Register - attach a named kernel
func (e *Emulator) Register(name string, kernel KernelFunc, uniformNames ...string) error {

	if _, ok := e.kernels[name]; ok {
		return fault.ErrKernelAlreadyRegistered
	}
	e.kernels[name] = &registeredKernel{
		kernel:       kernel,
		uniformNames: uniformNames,
	}
	return nil
}

// Dispatch - run a kernel over the grid, swapping buffers per repeat
func (e *Emulator) Dispatch(name string, repeat int, uniformValues ...int32) error {

	entry, ok := e.kernels[name]
	if !ok {
		return fault.ErrKernelNotFound
	}
	if len(uniformValues) != len(entry.uniformNames) {
		return fault.ErrUniformCountMismatch
	}

	uniforms := make(Uniforms, len(uniformValues))
	for i, value := range uniformValues {
		uniforms[entry.uniformNames[i]] = value
	}

	for r := 0; r < repeat; r += 1 {
		view := &gridView{
			cells:  e.prev,
			width:  e.width,
			height: e.height,
		}
		for y := 0; y < e.height; y += 1 {
			for x := 0; x < e.width; x += 1 {
				e.next[y*e.width+x] = entry.kernel(view, x, y, uniforms)
			}
		}
		e.prev, e.next = e.next, e.prev
		e.dispatches += 1
	}
	return nil
}

// Write - replace the whole buffer
func (e *Emulator) Write(cells []Cell) error {

	if len(cells) != e.width*e.height {
		return fault.ErrBufferSizeMismatch
	}
	copy(e.prev, cells)
	e.writes += 1
	return nil
}

// Read - copy out a window of the current buffer
func (e *Emulator) Read(x, y, width, height int) ([]Cell, error) {

	if x < 0 || y < 0 || width <= 0 || height <= 0 ||
		x+width > e.width || y+height > e.height {
		return nil, fault.ErrReadOutOfRange
	}

	cells := make([]Cell, 0, width*height)
	for row := y; row < y+height; row += 1 {
		offset := row*e.width + x
		cells = append(cells, e.prev[offset:offset+width]...)
	}
	return cells, nil
}

// Dimensions - grid width and height
func (e *Emulator) Dimensions() (int, int) {
	return e.width, e.height
}

// DispatchCount - total kernel repetitions executed
func (e *Emulator) DispatchCount() uint64 {
	return e.dispatches
}

// WriteCount - total whole-buffer uploads
func (e *Emulator) WriteCount() uint64 {
	return e.writes
}
