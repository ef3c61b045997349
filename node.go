// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

// Kind identifies which of the three closed node shapes a Node is.
// Dispatch throughout the package is by this tag, never by type
// assertion chains or open polymorphism.
type Kind byte

const (
	_ Kind = iota
	// LeafKind nodes carry the remaining key suffix and a value.
	LeafKind
	// ExtensionKind nodes carry a shared nibble prefix and a Branch child.
	ExtensionKind
	// BranchKind nodes carry up to 16 children and an optional value.
	BranchKind
)

func (k Kind) String() string {
	switch k {
	case LeafKind:
		return "Leaf"
	case ExtensionKind:
		return "Extension"
	case BranchKind:
		return "Branch"
	default:
		return "Invalid"
	}
}

// Node is the closed sum of the three trie node shapes. All three variants
// embed a cache struct to support the dirty-bit memoization described
// below.
type Node interface {
	Kind() Kind
	cache() *encodingCache
}

// encodingCache holds a node's memoized canonical encoding and, if that
// encoding is 32 bytes or more, its digest. clear (via markDirty)
// invalidates both; it is called on every node along the spine of a
// mutation so a stale hash is
// never observed by ComputeHash.
type encodingCache struct {
	encoding []byte
	digest   []byte
	dirty    bool
}

func (c *encodingCache) clear() {
	c.encoding = nil
	c.digest = nil
	c.dirty = true
}

// Leaf is a terminal entry. The full key of the entry it holds equals the
// descent prefix that led to it concatenated with Suffix.
type Leaf struct {
	Suffix Path
	Value  []byte
	encodingCache
}

func (l *Leaf) Kind() Kind             { return LeafKind }
func (l *Leaf) cache() *encodingCache  { return &l.encodingCache }

// NewLeaf returns a new, dirty Leaf node.
func NewLeaf(suffix Path, value []byte) *Leaf {
	return &Leaf{Suffix: suffix.Clone(), Value: value, encodingCache: encodingCache{dirty: true}}
}

// Extension compresses a singleton chain: Segment is the shared nibble
// prefix and Child must resolve to a Branch.
type Extension struct {
	Segment Path
	Child   Handle
	encodingCache
}

func (e *Extension) Kind() Kind            { return ExtensionKind }
func (e *Extension) cache() *encodingCache { return &e.encodingCache }

// NewExtension returns a new, dirty Extension node. It panics if segment
// is empty: an extension with no shared nibbles is meaningless.
func NewExtension(segment Path, child Handle) *Extension {
	if len(segment) == 0 {
		panic("mpt: extension with empty path_segment")
	}
	return &Extension{Segment: segment.Clone(), Child: child, encodingCache: encodingCache{dirty: true}}
}

// Branch has 16 nibble-indexed child slots and an optional terminal value
// for the key equal to the descent prefix.
type Branch struct {
	Children [16]Handle
	Value    []byte // nil means absent
	encodingCache
}

func (b *Branch) Kind() Kind            { return BranchKind }
func (b *Branch) cache() *encodingCache { return &b.encodingCache }

// NewBranch returns a new, dirty, empty Branch node.
func NewBranch() *Branch {
	branch := &Branch{encodingCache: encodingCache{dirty: true}}
	for i := range branch.Children {
		branch.Children[i] = NullHandle
	}
	return branch
}

// Occupants counts how many of the branch's 16 child slots are non-null,
// plus one more if Value is present. Invariant I3 requires this to be at
// least 2 for any Branch reachable from the root.
func (b *Branch) Occupants() int {
	n := 0
	if b.Value != nil {
		n++
	}
	for _, child := range b.Children {
		if !child.IsNull() {
			n++
		}
	}
	return n
}

// soleChildIndex returns the nibble index of the branch's first non-null
// child, which is its only one when Occupants has been checked first. It
// panics if the branch has no children.
func (b *Branch) soleChildIndex() int {
	for i, child := range b.Children {
		if !child.IsNull() {
			return i
		}
	}
	panic("mpt: soleChildIndex called on a branch with no children")
}

func markDirty(n Node) {
	n.cache().clear()
}
