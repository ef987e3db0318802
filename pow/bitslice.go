// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pow - bit-sliced parallel proof-of-work search
//
// The sponge state is held as pairs of 32 bit planes so that every bit
// position carries one trit for one of 32 simultaneously tested
// candidates: 0 is (low=1, high=1), +1 is (low=0, high=1) and -1 is
// (low=1, high=0).  Together with the grid height this tests
// 32 x height nonces per permutation pass.
package pow

import (
	"github.com/ternarybit/tritpow/compute"
	"github.com/ternarybit/tritpow/curl"
	"github.com/ternarybit/tritpow/fault"
)

// layout of the search buffer
//
// one grid row is the full sponge state plus a flag cell; the nonce
// field occupies the final absorbed block of the state
const (
	GridWidth    = curl.StateLength + 1 // state cells plus the flag column
	LanesPerWord = 32                   // candidates per cell bit position

	// trits of the searched nonce: the final absorbed block
	NonceLength = curl.HashLength
	nonceOffset = curl.StateLength - curl.HashLength

	// lane seed cells, then the balanced ternary counter
	seedOffset    = nonceOffset
	seedLength    = 4
	counterOffset = seedOffset + seedLength
	counterLength = 41 // covers the whole int64 range

	// per-row pass masks and the aggregate sentinel
	flagColumn = curl.StateLength
)

// counter spacing between grid rows; rows can never collide because a
// search would need 2^32 increments to catch up with the next row
const rowStride = int64(1) << 32

// lane seed planes for the four seed cells
//
// column b of cell k holds trit digit k of the base 3 expansion of the
// lane index b, so all 32 columns are pairwise distinct
var seedLow = [seedLength]uint32{
	0x6DB6DB6D,
	0x3F1F8FC7,
	0xFFFC01FF,
	0x07FFFFFF,
}

var seedHigh = [seedLength]uint32{
	0xDB6DB6DB,
	0xF8FC7E3F,
	0xF803FFFF,
	0xFFFFFFFF,
}

// broadcast - plane bits for one trit replicated to all 32 lanes
func broadcast(t int8) (low uint32, high uint32) {
	switch t {
	case 0:
		return 0xFFFFFFFF, 0xFFFFFFFF
	case 1:
		return 0x00000000, 0xFFFFFFFF
	default: // -1
		return 0xFFFFFFFF, 0x00000000
	}
}

// packState - encode a trit vector into one row of bit-sliced cells
//
// all 32 lanes start identical; the initialise kernel later makes them
// distinct inside the nonce field.  channels 2,3 receive a copy so the
// working pair is valid immediately
func packState(trits []int8) ([]compute.Cell, error) {

	if curl.StateLength != len(trits) {
		return nil, fault.ErrInvalidStateLength
	}

	cells := make([]compute.Cell, curl.StateLength)
	for i, t := range trits {
		if t < -1 || t > 1 {
			return nil, fault.ErrInvalidTritValue
		}
		low, high := broadcast(t)
		cells[i] = compute.Cell{low, high, low, high}
	}
	return cells, nil
}

// unpackLane - decode the working planes of one lane back to trits
//
// the inverse of packState for any single lane; a (0,0) pair marks a
// corrupted buffer and is rejected
func unpackLane(cells []compute.Cell, lane uint) ([]int8, error) {

	if lane >= LanesPerWord {
		return nil, fault.ErrReadOutOfRange
	}

	trits := make([]int8, len(cells))
	for i, cell := range cells {
		low := cell[2] >> lane & 1
		high := cell[3] >> lane & 1
		switch {
		case 1 == low && 1 == high:
			trits[i] = 0
		case 0 == low && 1 == high:
			trits[i] = 1
		case 1 == low && 0 == high:
			trits[i] = -1
		default:
			return nil, fault.ErrInvalidTritValue
		}
	}
	return trits, nil
}
