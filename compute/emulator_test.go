// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybit/tritpow/compute"
	"github.com/ternarybit/tritpow/fault"
)

// kernel that adds a uniform to channel 0
func addKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {
	cell := prev.Cell(x, y)
	cell[0] += uint32(u["step"])
	return cell
}

// kernel that shifts every cell one column left, wrapping
func rotateKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {
	width, _ := prev.Dimensions()
	return prev.Cell((x+1)%width, y)
}

func TestNewEmulatorInvalid(t *testing.T) {

	_, err := compute.NewEmulator(0, 4)
	assert.Equal(t, fault.ErrInvalidGridHeight, err, "zero width accepted")

	_, err = compute.NewEmulator(4, -1)
	assert.Equal(t, fault.ErrInvalidGridHeight, err, "negative height accepted")
}

func TestRegisterDuplicate(t *testing.T) {

	e, err := compute.NewEmulator(4, 4)
	assert.Nil(t, err, "unexpected error")

	assert.Nil(t, e.Register("add", addKernel, "step"), "unexpected error")
	assert.Equal(t, fault.ErrKernelAlreadyRegistered, e.Register("add", addKernel, "step"), "duplicate accepted")
}

func TestDispatchErrors(t *testing.T) {

	e, err := compute.NewEmulator(4, 4)
	assert.Nil(t, err, "unexpected error")
	assert.Nil(t, e.Register("add", addKernel, "step"), "unexpected error")

	assert.Equal(t, fault.ErrKernelNotFound, e.Dispatch("missing", 1), "unknown kernel dispatched")
	assert.Equal(t, fault.ErrUniformCountMismatch, e.Dispatch("add", 1), "missing uniform accepted")
	assert.Equal(t, fault.ErrUniformCountMismatch, e.Dispatch("add", 1, 1, 2), "extra uniform accepted")
}

func TestDispatchRepeat(t *testing.T) {

	e, err := compute.NewEmulator(3, 2)
	assert.Nil(t, err, "unexpected error")
	assert.Nil(t, e.Register("add", addKernel, "step"), "unexpected error")

	assert.Nil(t, e.Dispatch("add", 5, 3), "unexpected error")

	cells, err := e.Read(0, 0, 3, 2)
	assert.Nil(t, err, "unexpected error")
	for i, cell := range cells {
		assert.Equal(t, uint32(15), cell[0], "wrong value at: %d", i)
	}
	assert.Equal(t, uint64(5), e.DispatchCount(), "wrong dispatch count")
}

// a kernel reading neighbour cells must see the previous buffer only
func TestDoubleBuffering(t *testing.T) {

	e, err := compute.NewEmulator(4, 1)
	assert.Nil(t, err, "unexpected error")
	assert.Nil(t, e.Register("rotate", rotateKernel), "unexpected error")

	buffer := []compute.Cell{
		{10}, {20}, {30}, {40},
	}
	assert.Nil(t, e.Write(buffer), "unexpected error")

	assert.Nil(t, e.Dispatch("rotate", 1), "unexpected error")

	cells, err := e.Read(0, 0, 4, 1)
	assert.Nil(t, err, "unexpected error")
	assert.Equal(t, uint32(20), cells[0][0], "wrong rotation")
	assert.Equal(t, uint32(30), cells[1][0], "wrong rotation")
	assert.Equal(t, uint32(40), cells[2][0], "wrong rotation")
	assert.Equal(t, uint32(10), cells[3][0], "wrong rotation")

	// a second rotation continues from the first result
	assert.Nil(t, e.Dispatch("rotate", 1), "unexpected error")
	cells, err = e.Read(0, 0, 4, 1)
	assert.Nil(t, err, "unexpected error")
	assert.Equal(t, uint32(30), cells[0][0], "wrong rotation")
}

func TestWriteSize(t *testing.T) {

	e, err := compute.NewEmulator(4, 4)
	assert.Nil(t, err, "unexpected error")
	assert.Equal(t, fault.ErrBufferSizeMismatch, e.Write(make([]compute.Cell, 3)), "short buffer accepted")
}

func TestReadWindow(t *testing.T) {

	e, err := compute.NewEmulator(4, 3)
	assert.Nil(t, err, "unexpected error")

	buffer := make([]compute.Cell, 12)
	for i := range buffer {
		buffer[i][0] = uint32(i)
	}
	assert.Nil(t, e.Write(buffer), "unexpected error")

	cells, err := e.Read(1, 1, 2, 2)
	assert.Nil(t, err, "unexpected error")
	assert.Equal(t, []compute.Cell{{5}, {6}, {9}, {10}}, cells, "wrong window")

	_, err = e.Read(3, 0, 2, 1)
	assert.Equal(t, fault.ErrReadOutOfRange, err, "out of range accepted")
	_, err = e.Read(0, 0, 0, 1)
	assert.Equal(t, fault.ErrReadOutOfRange, err, "empty window accepted")
}
