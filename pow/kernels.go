// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"github.com/ternarybit/tritpow/compute"
	"github.com/ternarybit/tritpow/curl"
	"github.com/ternarybit/tritpow/trit"
)

// kernel names
const (
	initialiseName  = "initialise"
	incrementName   = "increment"
	twistName       = "twist"
	checkName       = "check"
	columnCheckName = "columnCheck"
	finaliseName    = "finalise"
)

// the two source cells for every output cell of one permutation round
//
// the walk steps forward 364 or back 365 through the state, the same
// rotation the scalar sponge uses
var twistSource [curl.StateLength][2]int

func init() {
	j := 0
	for i := 0; i < curl.StateLength; i += 1 {
		a := j
		if j < 365 {
			j += 364
		} else {
			j -= 365
		}
		twistSource[i] = [2]int{a, j}
	}
}

// registerKernels - attach the whole kernel set to a backend
func registerKernels(backend compute.Backend) error {

	for _, item := range []struct {
		name     string
		kernel   compute.KernelFunc
		uniforms []string
	}{
		{initialiseName, initialiseKernel, []string{"offset"}},
		{incrementName, incrementKernel, nil},
		{twistName, twistKernel, nil},
		{checkName, checkKernel, []string{"difficulty"}},
		{columnCheckName, columnCheckKernel, nil},
		{finaliseName, finaliseKernel, nil},
	} {
		if err := backend.Register(item.name, item.kernel, item.uniforms...); nil != err {
			return err
		}
	}
	return nil
}

// initialiseKernel - lay out the nonce field over the uploaded state
//
// cells before the nonce field pass through; the seed cells make the
// 32 word lanes distinct and the counter cells receive the row's base
// value, so no two lanes anywhere in the grid share a nonce
func initialiseKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {

	if flagColumn == x {
		return compute.Cell{}
	}

	cell := prev.Cell(x, y)

	switch {
	case x < seedOffset:
		// uploaded mid-state

	case x < counterOffset:
		k := x - seedOffset
		cell[0] = seedLow[k]
		cell[1] = seedHigh[k]

	case x < counterOffset+counterLength:
		base := int64(u["offset"]) + int64(y)*rowStride
		var digits [counterLength]int8
		_ = trit.FromInt64(base, digits[:])
		cell[0], cell[1] = broadcast(digits[x-counterOffset])

	default:
		cell[0], cell[1] = broadcast(0)
	}

	cell[2], cell[3] = cell[0], cell[1]
	return cell
}

// incrementKernel - add one to every lane's counter
//
// ripple carry in the bit-sliced domain: a cell receives carry only if
// every lower counter cell held +1; the whole state is copied into the
// working channels for the following permutation
func incrementKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {

	cell := prev.Cell(x, y)
	if flagColumn == x {
		return cell
	}

	if x >= counterOffset && x < counterOffset+counterLength {
		carry := uint32(0xFFFFFFFF)
		for k := counterOffset; k < x; k += 1 {
			c := prev.Cell(k, y)
			carry &= ^c[0] & c[1] // lanes whose digit was +1
		}
		low := cell[0]
		high := cell[1]
		cell[0] = (carry & (high ^ low)) | (^carry & low)
		cell[1] = (carry & low) | (^carry & high)
	}

	cell[2], cell[3] = cell[0], cell[1]
	return cell
}

// twistKernel - one permutation round on the working channels
//
// the substitution is the whole-word boolean form of the sponge's
// truth table; the persistent channels pass through untouched
func twistKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {

	cell := prev.Cell(x, y)
	if flagColumn == x {
		return cell
	}

	a := prev.Cell(twistSource[x][0], y)
	b := prev.Cell(twistSource[x][1], y)

	alpha := a[2]
	beta := a[3]
	gamma := b[3]
	delta := (alpha | ^gamma) & (b[2] ^ beta)

	cell[2] = ^delta
	cell[3] = (alpha ^ gamma) | delta
	return cell
}

// checkKernel - per-lane pass masks into the flag column
//
// a lane passes when the trailing difficulty cells of the permuted
// state all hold a zero trit (both plane bits set)
func checkKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {

	if flagColumn != x {
		return prev.Cell(x, y)
	}

	difficulty := int(u["difficulty"])

	mask := uint32(0xFFFFFFFF)
	for k := curl.StateLength - difficulty; k < curl.StateLength; k += 1 {
		c := prev.Cell(k, y)
		mask &= c[2] & c[3]
	}

	return compute.Cell{mask, 0, 0, 0}
}

// columnCheckKernel - reduce the pass masks to one sentinel cell
//
// channel 3 of flag cell (flagColumn, 0) becomes all ones when any
// lane in the grid passed; the per-row masks stay in channel 0
func columnCheckKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {

	cell := prev.Cell(x, y)
	if flagColumn != x || 0 != y {
		return cell
	}

	_, height := prev.Dimensions()
	sentinel := uint32(0)
	for row := 0; row < height; row += 1 {
		if 0 != prev.Cell(flagColumn, row)[0] {
			sentinel = 0xFFFFFFFF
		}
	}

	cell[3] = sentinel
	return cell
}

// finaliseKernel - repack the winning state for read back
//
// the persistent planes, which still hold the nonce that produced the
// matching hash, are copied into the transferable working channels
func finaliseKernel(prev compute.Grid, x, y int, u compute.Uniforms) compute.Cell {

	cell := prev.Cell(x, y)
	if flagColumn == x {
		return cell
	}

	cell[2], cell[3] = cell[0], cell[1]
	return cell
}
