// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
)

// inlineThreshold is the "inline if <32 bytes, else hash" boundary for
// child references. It is a strict less-than: an encoding of exactly 32
// bytes is replaced by its digest, never embedded.
const inlineThreshold = 32

// encodingBufferPool reuses *bytes.Buffer scratch space across encode
// calls.
var encodingBufferPool = &sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// emptyRootHash returns the canonical root hash of an empty trie: the digest
// of the RLP encoding of the empty byte string.
func emptyRootHash(digest Digest) []byte {
	encodedEmptyString, err := rlp.EncodeToBytes([]byte{})
	if err != nil {
		// rlp.EncodeToBytes on a []byte literal cannot fail.
		panic(fmt.Sprintf("mpt: encoding empty string: %v", err))
	}
	return digest.Sum(encodedEmptyString)
}

// ComputeHash returns the 32-byte (or Digest.Size()-byte) root hash of
// the trie. It does not mutate any observable state beyond the
// per-node encoding/digest memo.
func (t *Trie) ComputeHash() ([]byte, error) {
	return t.computeHashWith(Keccak256{})
}

// ComputeHashWith is ComputeHash parameterized by an explicit Digest
// capability, for callers that are not targeting Ethereum's Keccak-256.
func (t *Trie) ComputeHashWith(digest Digest) ([]byte, error) {
	return t.computeHashWith(digest)
}

func (t *Trie) computeHashWith(digest Digest) ([]byte, error) {
	if t.root.IsNull() {
		return emptyRootHash(digest), nil
	}

	encoding, err := t.encodeNode(t.root, digest)
	if err != nil {
		return nil, err
	}
	// The root's reported hash is always the digest of its encoding, even
	// when that encoding would have been inlined had the root been a
	// child of some other node.
	return digest.Sum(encoding), nil
}

// EncodeRoot returns the raw canonical encoding of the root node, without
// reducing it to a hash. Exposed for callers inspecting the inline/digest
// boundary directly.
func (t *Trie) EncodeRoot() ([]byte, error) {
	if t.root.IsNull() {
		return rlp.EncodeToBytes([]byte{})
	}
	return t.encodeNode(t.root, Keccak256{})
}

// encodeNode returns node h's canonical RLP encoding, using the node's
// memoized encoding when it is not dirty.
func (t *Trie) encodeNode(h Handle, digest Digest) ([]byte, error) {
	node := t.arena.Get(h)
	cache := node.cache()
	if !cache.dirty && cache.encoding != nil {
		return cache.encoding, nil
	}

	var encoding []byte
	var err error
	switch n := node.(type) {
	case *Leaf:
		encoding, err = t.encodeLeaf(n)
	case *Extension:
		encoding, err = t.encodeExtension(n, digest)
	case *Branch:
		encoding, err = t.encodeBranch(n, digest)
	default:
		invariantViolation("mpt: encode encountered unknown node kind %T", n)
	}
	if err != nil {
		return nil, err
	}

	cache.encoding = encoding
	cache.dirty = false
	if len(encoding) >= inlineThreshold {
		cache.digest = digest.Sum(encoding)
	} else {
		cache.digest = nil
	}
	return encoding, nil
}

func (t *Trie) encodeLeaf(n *Leaf) ([]byte, error) {
	return encodeRLPList(EncodeHexPrefix(n.Suffix, true), n.Value)
}

func (t *Trie) encodeExtension(n *Extension, digest Digest) ([]byte, error) {
	childRef, err := t.nodeRef(n.Child, digest)
	if err != nil {
		return nil, err
	}
	return encodeRLPList(EncodeHexPrefix(n.Segment, false), childRef)
}

func (t *Trie) encodeBranch(n *Branch, digest Digest) ([]byte, error) {
	items := make([]any, 17)
	for i, child := range n.Children {
		ref, err := t.nodeRef(child, digest)
		if err != nil {
			return nil, err
		}
		items[i] = ref
	}
	if n.Value != nil {
		items[16] = []byte(n.Value)
	} else {
		items[16] = []byte{}
	}
	return rlpEncodeList(items)
}

// nodeRef computes ref(child): a NULL child is the empty
// byte string; an encoding shorter than 32 bytes is embedded verbatim
// (as a pre-encoded RLP item, spliced rather than re-wrapped as a
// string); an encoding of 32 bytes or more is replaced by its digest.
func (t *Trie) nodeRef(h Handle, digest Digest) (any, error) {
	if h.IsNull() {
		return []byte{}, nil
	}
	encoding, err := t.encodeNode(h, digest)
	if err != nil {
		return nil, err
	}
	if len(encoding) < inlineThreshold {
		return rlp.RawValue(encoding), nil
	}
	return digest.Sum(encoding), nil
}

// encodeRLPList is a convenience for the common two-element
// [hex-prefix, payload] lists Leaf and Extension encode to.
func encodeRLPList(hexPrefix []byte, payload any) ([]byte, error) {
	return rlpEncodeList([]any{hexPrefix, payload})
}

// rlpEncodeList encodes items as a single RLP list, using a pooled
// buffer for the intermediate write. Each item is either a []byte
// (encoded as an ordinary RLP string) or an rlp.RawValue (spliced
// verbatim, used for inlined child node references).
func rlpEncodeList(items []any) ([]byte, error) {
	buffer := encodingBufferPool.Get().(*bytes.Buffer)
	buffer.Reset()
	defer encodingBufferPool.Put(buffer)

	if err := rlp.Encode(buffer, items); err != nil {
		return nil, fmt.Errorf("%w: rlp encoding node: %v", ErrEncodingFailure, err)
	}

	out := make([]byte, buffer.Len())
	copy(out, buffer.Bytes())
	return out, nil
}
