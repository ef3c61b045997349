// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewExtension_panicsOnEmptySegment(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewExtension(nil, NullHandle)
	})
}

func Test_Branch_Occupants(t *testing.T) {
	t.Parallel()

	branch := NewBranch()
	assert.Equal(t, 0, branch.Occupants())

	branch.Value = []byte("v")
	assert.Equal(t, 1, branch.Occupants())

	branch.Children[3] = Handle{}
	assert.Equal(t, 1, branch.Occupants(), "a zero-value Handle is not null and counts as occupied")
}

func Test_Branch_soleChildIndex(t *testing.T) {
	t.Parallel()

	branch := NewBranch()
	branch.Children[7] = Handle{idx: 0}
	assert.Equal(t, 7, branch.soleChildIndex())
}

func Test_Branch_soleChildIndex_panicsWhenEmpty(t *testing.T) {
	t.Parallel()

	branch := NewBranch()
	assert.Panics(t, func() {
		branch.soleChildIndex()
	})
}

func Test_NewLeaf_startsDirty(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf(Path{1}, []byte("v"))
	assert.True(t, leaf.cache().dirty)
	assert.Nil(t, leaf.cache().encoding)
}

func Test_markDirty_clearsCache(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf(Path{1}, []byte("v"))
	leaf.cache().encoding = []byte("stale")
	leaf.cache().dirty = false

	markDirty(leaf)

	assert.True(t, leaf.cache().dirty)
	assert.Nil(t, leaf.cache().encoding)
}

func Test_Kind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Leaf", LeafKind.String())
	assert.Equal(t, "Extension", ExtensionKind.String())
	assert.Equal(t, "Branch", BranchKind.String())
	assert.Equal(t, "Invalid", Kind(99).String())
}

func Test_NewLeaf_clonesSuffix(t *testing.T) {
	t.Parallel()

	suffix := Path{1, 2, 3}
	leaf := NewLeaf(suffix, nil)
	suffix[0] = 9
	assert.Equal(t, Nibble(1), leaf.Suffix[0], "NewLeaf must not alias the caller's backing array")
}
