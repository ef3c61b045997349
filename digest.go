// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import "golang.org/x/crypto/sha3"

// keccakSize is the fixed Keccak-256 output width required for
// Ethereum-compatible root hashes.
const keccakSize = 32

// Keccak256 is the default Digest capability, using
// golang.org/x/crypto/sha3.NewLegacyKeccak256. Ethereum's Keccak-256 is
// the pre-standardization variant (LegacyKeccak256), not NIST SHA3-256.
type Keccak256 struct{}

func (Keccak256) Sum(data []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data) //nolint:errcheck // hash.Hash.Write never returns an error
	return hasher.Sum(nil)
}

func (Keccak256) Size() int { return keccakSize }

var _ Digest = Keccak256{}
