// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package trit - balanced ternary digits and their text encoding
//
// A trit is a value in {-1, 0, +1}.  Three trits form one tryte,
// written as a character from the alphabet "9ABCDEFGHIJKLMNOPQRSTUVWXYZ"
// where '9' is zero, 'A'..'M' are 1..13 and 'N'..'Z' are -13..-1.
package trit

import (
	"github.com/ternarybit/tritpow/fault"
)

// TritsPerTryte - number of trits encoded by one tryte character
const TritsPerTryte = 3

// Alphabet - the tryte character set in value order
const Alphabet = "9ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IsValid - check a single trit value
func IsValid(t int8) bool {
	return t >= -1 && t <= 1
}

// Validate - check a whole trit sequence
func Validate(trits []int8) error {
	for _, t := range trits {
		if !IsValid(t) {
			return fault.ErrInvalidTritValue
		}
	}
	return nil
}

// FromTrytes - convert a tryte string to its trit sequence
//
// each tryte expands to three trits, least significant first
func FromTrytes(trytes string) ([]int8, error) {

	trits := make([]int8, 0, TritsPerTryte*len(trytes))

	for _, c := range trytes {
		value, err := tryteValue(c)
		if nil != err {
			return nil, err
		}
		for i := 0; i < TritsPerTryte; i += 1 {
			r := value % 3
			if r > 1 {
				r -= 3
			} else if r < -1 {
				r += 3
			}
			trits = append(trits, int8(r))
			value = (value - r) / 3
		}
	}
	return trits, nil
}

// ToTrytes - convert a trit sequence to its tryte string
//
// the length must be a multiple of three
func ToTrytes(trits []int8) (string, error) {

	if 0 != len(trits)%TritsPerTryte {
		return "", fault.ErrInvalidLength
	}
	if err := Validate(trits); nil != err {
		return "", err
	}

	trytes := make([]byte, 0, len(trits)/TritsPerTryte)

	for i := 0; i < len(trits); i += TritsPerTryte {
		value := int(trits[i]) + 3*int(trits[i+1]) + 9*int(trits[i+2])
		trytes = append(trytes, Alphabet[(value+27)%27])
	}
	return string(trytes), nil
}

// FromInt64 - fill a trit slice with the balanced ternary digits of a
// value, least significant first
//
// the slice must be long enough to hold all non-zero digits; 41 trits
// cover the whole int64 range
func FromInt64(value int64, trits []int8) error {

	for i := range trits {
		r := value % 3
		if r > 1 {
			r -= 3
		} else if r < -1 {
			r += 3
		}
		trits[i] = int8(r)
		value = (value - r) / 3
	}
	if 0 != value {
		return fault.ErrInvalidLength
	}
	return nil
}

// ToInt64 - evaluate a balanced ternary trit sequence
func ToInt64(trits []int8) int64 {

	value := int64(0)
	for i := len(trits) - 1; i >= 0; i -= 1 {
		value = 3*value + int64(trits[i])
	}
	return value
}

// map one tryte character to its signed value
func tryteValue(c rune) (int, error) {

	switch {
	case '9' == c:
		return 0, nil
	case c >= 'A' && c <= 'M':
		return int(c-'A') + 1, nil
	case c >= 'N' && c <= 'Z':
		return int(c-'N') - 13, nil
	}
	return 0, fault.ErrInvalidTryteCharacter
}
