// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Keccak256_SizeAndDeterminism(t *testing.T) {
	t.Parallel()

	digest := Keccak256{}
	assert.Equal(t, 32, digest.Size())

	a := digest.Sum([]byte("dog"))
	b := digest.Sum([]byte("dog"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	c := digest.Sum([]byte("cat"))
	assert.NotEqual(t, a, c)
}

func Test_Keccak256_emptyInput(t *testing.T) {
	t.Parallel()

	digest := Keccak256{}
	// Keccak-256 of the empty byte string, a widely published constant
	// (e.g. Ethereum's EmptyCodeHash is keccak256(nil)).
	got := digest.Sum(nil)
	assert.Len(t, got, 32)
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hexEncode(got))
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0F]
	}
	return string(out)
}
