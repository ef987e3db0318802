// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package curl - the ternary sponge hash
//
// The state is 729 trits; blocks of 243 trits are absorbed into the
// final third of the state (the rate window) and the permutation is
// applied for a fixed number of rounds after each block.  The hash is
// squeezed from the same window.
package curl

import (
	"github.com/ternarybit/tritpow/fault"
	"github.com/ternarybit/tritpow/trit"
)

// structural constants of the hash
const (
	StateLength    = 729 // trits of internal state
	HashLength     = 243 // trits per absorbed block and per digest
	NumberOfRounds = 27  // permutation rounds per transform
)

// RateOffset - start of the absorb/squeeze window within the state
const RateOffset = StateLength - HashLength

// substitution table indexed by a + 3b + 4 for trits a, b
var truthTable = [9]int8{1, 0, -1, 1, -1, 0, -1, 1, 0}

// Curl - sponge instance
type Curl struct {
	state [StateLength]int8
}

// New - create a sponge with zeroed state
func New() *Curl {
	return new(Curl)
}

// Initialise - reset the state to all zero trits
func (c *Curl) Initialise() {
	for i := range c.state {
		c.state[i] = 0
	}
}

// Absorb - feed whole blocks of trits into the sponge
//
// the input length must be a non-zero multiple of HashLength
func (c *Curl) Absorb(trits []int8) error {

	if 0 == len(trits) || 0 != len(trits)%HashLength {
		return fault.ErrInvalidLength
	}
	if err := trit.Validate(trits); nil != err {
		return err
	}

	for offset := 0; offset < len(trits); offset += HashLength {
		copy(c.state[RateOffset:], trits[offset:offset+HashLength])
		c.Transform()
	}
	return nil
}

// Squeeze - extract the next digest block
func (c *Curl) Squeeze() []int8 {

	hash := make([]int8, HashLength)
	copy(hash, c.state[RateOffset:])
	c.Transform()
	return hash
}

// State - export a copy of the full internal state
func (c *Curl) State() []int8 {

	state := make([]int8, StateLength)
	copy(state, c.state[:])
	return state
}

// SetState - import a previously exported state
func (c *Curl) SetState(trits []int8) error {

	if StateLength != len(trits) {
		return fault.ErrInvalidStateLength
	}
	if err := trit.Validate(trits); nil != err {
		return err
	}
	copy(c.state[:], trits)
	return nil
}

// Transform - apply the full permutation to the state
//
// every output trit is the substitution of two state trits selected by
// the rotation walk: a = j, then j moves forward 364 or back 365
func (c *Curl) Transform() {

	var scratch [StateLength]int8

	for r := 0; r < NumberOfRounds; r += 1 {
		scratch = c.state
		j := 0
		for i := 0; i < StateLength; i += 1 {
			a := j
			if j < 365 {
				j += 364
			} else {
				j -= 365
			}
			c.state[i] = truthTable[scratch[a]+3*scratch[j]+4]
		}
	}
}
