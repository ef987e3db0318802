// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trit_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybit/tritpow/fault"
	"github.com/ternarybit/tritpow/trit"
)

// test the alphabet maps to the expected trit triples
func TestFromTrytes(t *testing.T) {

	items := []struct {
		trytes string
		trits  []int8
	}{
		{"9", []int8{0, 0, 0}},
		{"A", []int8{1, 0, 0}},
		{"B", []int8{-1, 1, 0}},
		{"M", []int8{1, 1, 1}},
		{"N", []int8{-1, -1, -1}},
		{"Z", []int8{-1, 0, 0}},
		{"9AZ", []int8{0, 0, 0, 1, 0, 0, -1, 0, 0}},
	}

	for i, item := range items {
		trits, err := trit.FromTrytes(item.trytes)
		assert.Nil(t, err, "%d: unexpected error", i)
		assert.Equal(t, item.trits, trits, "%d: wrong trits for: %q", i, item.trytes)
	}
}

func TestFromTrytesInvalidCharacter(t *testing.T) {

	for _, s := range []string{"a", "0", " ", "A9 ", "quick"} {
		_, err := trit.FromTrytes(s)
		assert.Equal(t, fault.ErrInvalidTryteCharacter, err, "no error for: %q", s)
	}
}

func TestToTrytesInvalidLength(t *testing.T) {

	_, err := trit.ToTrytes([]int8{0, 1})
	assert.Equal(t, fault.ErrInvalidLength, err, "length error expected")
}

func TestToTrytesInvalidTrit(t *testing.T) {

	_, err := trit.ToTrytes([]int8{0, 2, 0})
	assert.Equal(t, fault.ErrInvalidTritValue, err, "trit value error expected")
}

// round trip across the whole alphabet and random strings
func TestTryteRoundTrip(t *testing.T) {

	trits, err := trit.FromTrytes(trit.Alphabet)
	assert.Nil(t, err, "unexpected error")

	trytes, err := trit.ToTrytes(trits)
	assert.Nil(t, err, "unexpected error")
	assert.Equal(t, trit.Alphabet, trytes, "alphabet round trip failed")

	r := rand.New(rand.NewSource(1207))
	for n := 0; n < 20; n += 1 {
		buffer := make([]byte, 81)
		for i := range buffer {
			buffer[i] = trit.Alphabet[r.Intn(len(trit.Alphabet))]
		}
		s := string(buffer)

		trits, err := trit.FromTrytes(s)
		assert.Nil(t, err, "unexpected error")

		back, err := trit.ToTrytes(trits)
		assert.Nil(t, err, "unexpected error")
		assert.Equal(t, s, back, "round trip failed")
	}
}

// test balanced ternary integer encoding
func TestInt64RoundTrip(t *testing.T) {

	values := []int64{0, 1, -1, 2, -2, 3, 13, -13, 1000000, -1000000, 1 << 40}

	r := rand.New(rand.NewSource(415))
	for n := 0; n < 20; n += 1 {
		values = append(values, r.Int63())
	}

	for _, value := range values {
		trits := make([]int8, 41)
		err := trit.FromInt64(value, trits)
		assert.Nil(t, err, "unexpected error for: %d", value)
		assert.Equal(t, value, trit.ToInt64(trits), "round trip failed for: %d", value)
	}
}

func TestFromInt64Overflow(t *testing.T) {

	trits := make([]int8, 3)
	err := trit.FromInt64(1000, trits)
	assert.Equal(t, fault.ErrInvalidLength, err, "overflow not detected")
}

// successive values must produce distinct digit sequences
func TestInt64Ordering(t *testing.T) {

	previous := make([]int8, 41)
	assert.Nil(t, trit.FromInt64(999, previous), "unexpected error")

	for v := int64(1000); v < 1100; v += 1 {
		current := make([]int8, 41)
		assert.Nil(t, trit.FromInt64(v, current), "unexpected error")
		assert.NotEqual(t, previous, current, "digits repeated at: %d", v)
		previous = current
	}
}
