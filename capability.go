// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

// This file collects the external capability interfaces the core trie
// consumes: a KeyEncoder and ValueEncoder to turn caller types
// into byte sequences, and a Digest capability for the root-hash
// computation in hash.go. The RLP writer capability is the
// github.com/ethereum/go-ethereum/rlp package itself, used directly in
// hash.go; it is not re-abstracted behind an interface here because this
// module has exactly one canonical encoding and gains nothing from
// swapping RLP implementations, unlike Digest which is explicitly
// parameterizes the trie over.

// KeyEncoder turns a caller-level key into the byte sequence the trie
// indexes by. Implementations must be deterministic: equal keys must
// encode identically.
type KeyEncoder interface {
	EncodeKey(key any) ([]byte, error)
}

// ValueEncoder turns a caller-level value into the byte sequence stored
// in a Leaf or Branch. Implementations must be deterministic.
type ValueEncoder interface {
	EncodeValue(value any) ([]byte, error)
}

// Digest is a fixed-output cryptographic hash capability. The trie makes
// no assumption about it beyond determinism and output width.
type Digest interface {
	// Sum returns the digest of data. Its length is the capability's
	// fixed output width; for Ethereum compatibility this is 32 bytes.
	Sum(data []byte) []byte
	// Size returns the fixed output width in bytes.
	Size() int
}

// IdentityKeyEncoder and IdentityValueEncoder are the capabilities for
// callers whose keys and values are already []byte or string: they pass a
// []byte through unchanged, convert a string to its bytes (still
// satisfying the determinism requirement trivially), and fail for any
// other underlying type.
type (
	IdentityKeyEncoder   struct{}
	IdentityValueEncoder struct{}
)

func (IdentityKeyEncoder) EncodeKey(key any) ([]byte, error) {
	return asBytes(key, "key")
}

func (IdentityValueEncoder) EncodeValue(value any) ([]byte, error) {
	return asBytes(value, "value")
}

func asBytes(v any, what string) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return nil, newEncodingFailure("identity encoder given a non-byte-sequence %s of type %T", what, v)
	}
}

// CodedTrie adapts a *Trie to accept caller-level key/value types by
// running them through a KeyEncoder/ValueEncoder pair before delegating
// to the byte-oriented Trie API. This is the "external capability
// binding" onto the byte-oriented core.
type CodedTrie struct {
	Trie *Trie
	Keys KeyEncoder
	Vals ValueEncoder
}

// NewCodedTrie returns a CodedTrie over a fresh empty Trie.
func NewCodedTrie(keys KeyEncoder, vals ValueEncoder) *CodedTrie {
	return &CodedTrie{Trie: New(), Keys: keys, Vals: vals}
}

func (c *CodedTrie) Get(key any) (value []byte, ok bool, err error) {
	encodedKey, err := c.Keys.EncodeKey(key)
	if err != nil {
		return nil, false, err
	}
	value, ok = c.Trie.Get(encodedKey)
	return value, ok, nil
}

func (c *CodedTrie) Insert(key, value any) (previous []byte, overwritten bool, err error) {
	encodedKey, err := c.Keys.EncodeKey(key)
	if err != nil {
		return nil, false, err
	}
	encodedValue, err := c.Vals.EncodeValue(value)
	if err != nil {
		return nil, false, err
	}
	previous, overwritten = c.Trie.Insert(encodedKey, encodedValue)
	return previous, overwritten, nil
}

func (c *CodedTrie) Remove(key any) (removed []byte, ok bool, err error) {
	encodedKey, err := c.Keys.EncodeKey(key)
	if err != nil {
		return nil, false, err
	}
	removed, ok = c.Trie.Remove(encodedKey)
	return removed, ok, nil
}
