// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import "github.com/google/uuid"

// Trie is a single-writer, in-memory Modified Merkle Patricia Trie: an
// authenticated associative map from byte-string keys to byte-string
// values. The zero value is not usable; construct one with New.
//
// A Trie owns exactly one Arena, its single ownership root for all node
// storage. It is not safe for concurrent mutation; concurrent mutation
// is explicitly out of scope.
type Trie struct {
	arena *Arena
	root  Handle

	// id tags this trie instance for diagnostic logging. This module does
	// not implement snapshotting, so id is purely a log-correlation aid.
	id uuid.UUID
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{
		arena: NewArena(),
		root:  NullHandle,
		id:    uuid.New(),
	}
}

// ID returns the trie's diagnostic instance identifier.
func (t *Trie) ID() uuid.UUID { return t.id }

// normalizeValue ensures a nil value and an empty-but-non-nil value are
// never conflated: internally, "no value" is represented by a nil slice
// and "present, possibly empty" by any non-nil slice (including length 0).
func normalizeValue(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	return value
}

// Get returns the value stored under key, and whether it was present.
func (t *Trie) Get(key []byte) (value []byte, ok bool) {
	return t.getAt(t.root, BytesToPath(key))
}

func (t *Trie) getAt(h Handle, path Path) ([]byte, bool) {
	if h.IsNull() {
		return nil, false
	}
	switch n := t.arena.Get(h).(type) {
	case *Leaf:
		if path.Equal(n.Suffix) {
			return n.Value, true
		}
		return nil, false
	case *Extension:
		if !path.HasPrefix(n.Segment) {
			return nil, false
		}
		return t.getAt(n.Child, path[len(n.Segment):])
	case *Branch:
		if len(path) == 0 {
			if n.Value != nil {
				return n.Value, true
			}
			return nil, false
		}
		child := n.Children[path[0]]
		if child.IsNull() {
			return nil, false
		}
		return t.getAt(child, path[1:])
	default:
		invariantViolation("mpt: get encountered unknown node kind %T", n)
		panic("unreachable")
	}
}

// Insert stores value under key, returning the previous value and true if
// the key was already present, or (nil, false) if it was newly inserted.
func (t *Trie) Insert(key, value []byte) (previous []byte, overwritten bool) {
	value = normalizeValue(value)
	newRoot, previous, overwritten := t.insertAt(t.root, BytesToPath(key), value)
	t.root = newRoot
	return previous, overwritten
}

func (t *Trie) insertAt(h Handle, path Path, value []byte) (newHandle Handle, previous []byte, overwritten bool) {
	if h.IsNull() {
		return t.arena.Insert(NewLeaf(path, value)), nil, false
	}
	switch n := t.arena.Get(h).(type) {
	case *Leaf:
		return t.insertIntoLeaf(h, n, path, value)
	case *Extension:
		return t.insertIntoExtension(h, n, path, value)
	case *Branch:
		return t.insertIntoBranch(h, n, path, value)
	default:
		invariantViolation("mpt: insert encountered unknown node kind %T", n)
		panic("unreachable")
	}
}

func (t *Trie) insertIntoLeaf(h Handle, n *Leaf, path Path, value []byte) (Handle, []byte, bool) {
	p := path.CommonPrefixLen(n.Suffix)

	if p == len(path) && p == len(n.Suffix) {
		previous := n.Value
		n.Value = value
		markDirty(n)
		return h, previous, true
	}

	branch := NewBranch()
	if p == len(n.Suffix) {
		// the existing leaf's key is a strict prefix of the insertion path
		branch.Value = n.Value
	} else {
		oldNibble, oldTail := n.Suffix[p], n.Suffix[p+1:]
		branch.Children[oldNibble] = t.arena.Insert(NewLeaf(oldTail, n.Value))
	}

	if p == len(path) {
		// the insertion path is a strict prefix of the existing leaf's key
		branch.Value = value
	} else {
		newNibble, newTail := path[p], path[p+1:]
		branch.Children[newNibble] = t.arena.Insert(NewLeaf(newTail, value))
	}

	t.arena.Set(h, branch)
	if p == 0 {
		return h, nil, false
	}
	return t.arena.Insert(NewExtension(path[:p], h)), nil, false
}

func (t *Trie) insertIntoExtension(h Handle, n *Extension, path Path, value []byte) (Handle, []byte, bool) {
	p := path.CommonPrefixLen(n.Segment)

	if p == len(n.Segment) {
		childHandle, previous, overwritten := t.insertAt(n.Child, path[p:], value)
		n.Child = childHandle
		markDirty(n)
		return h, previous, overwritten
	}

	branch := NewBranch()

	oldNibble, oldTail := n.Segment[p], n.Segment[p+1:]
	if len(oldTail) == 0 {
		branch.Children[oldNibble] = n.Child
	} else {
		branch.Children[oldNibble] = t.arena.Insert(NewExtension(oldTail, n.Child))
	}

	if p == len(path) {
		branch.Value = value
	} else {
		newNibble, newTail := path[p], path[p+1:]
		branch.Children[newNibble] = t.arena.Insert(NewLeaf(newTail, value))
	}

	t.arena.Set(h, branch)
	if p == 0 {
		return h, nil, false
	}
	return t.arena.Insert(NewExtension(path[:p], h)), nil, false
}

func (t *Trie) insertIntoBranch(h Handle, n *Branch, path Path, value []byte) (Handle, []byte, bool) {
	if len(path) == 0 {
		previous := n.Value
		overwritten := n.Value != nil
		n.Value = value
		markDirty(n)
		return h, previous, overwritten
	}

	nibble := path[0]
	child := n.Children[nibble]
	if child.IsNull() {
		n.Children[nibble] = t.arena.Insert(NewLeaf(path[1:], value))
		markDirty(n)
		return h, nil, false
	}

	newChild, previous, overwritten := t.insertAt(child, path[1:], value)
	n.Children[nibble] = newChild
	markDirty(n)
	return h, previous, overwritten
}

// Remove deletes key from the trie, returning its value and true if it was
// present. Removing an absent key is a no-op and returns (nil, false),
// leaving the arena and root hash unchanged.
func (t *Trie) Remove(key []byte) (removed []byte, ok bool) {
	newRoot, value, removed2 := t.removeAt(t.root, BytesToPath(key))
	if !removed2 {
		return nil, false
	}
	t.root = newRoot
	return value, true
}

func (t *Trie) removeAt(h Handle, path Path) (newHandle Handle, value []byte, removed bool) {
	if h.IsNull() {
		return NullHandle, nil, false
	}
	switch n := t.arena.Get(h).(type) {
	case *Leaf:
		if !path.Equal(n.Suffix) {
			return h, nil, false
		}
		value := n.Value
		t.arena.Remove(h)
		return NullHandle, value, true
	case *Extension:
		return t.removeFromExtension(h, n, path)
	case *Branch:
		return t.removeFromBranch(h, n, path)
	default:
		invariantViolation("mpt: remove encountered unknown node kind %T", n)
		panic("unreachable")
	}
}

func (t *Trie) removeFromExtension(h Handle, n *Extension, path Path) (Handle, []byte, bool) {
	if !path.HasPrefix(n.Segment) {
		return h, nil, false
	}

	newChildHandle, value, removed := t.removeAt(n.Child, path[len(n.Segment):])
	if !removed {
		return h, nil, false
	}

	if newChildHandle.IsNull() {
		t.arena.Remove(h)
		return NullHandle, value, true
	}

	if t.arena.Get(newChildHandle).Kind() == BranchKind {
		n.Child = newChildHandle
		markDirty(n)
		return h, value, true
	}

	// The child stopped being a Branch: absorb it into this extension
	// using the same merge rule a branch's own collapse applies below.
	return t.absorbExtensionChild(h, n, newChildHandle), value, true
}

func (t *Trie) absorbExtensionChild(h Handle, n *Extension, childHandle Handle) Handle {
	switch c := t.arena.Get(childHandle).(type) {
	case *Leaf:
		merged := NewLeaf(append(n.Segment.Clone(), c.Suffix...), c.Value)
		t.arena.Remove(childHandle)
		t.arena.Set(h, merged)
		return h
	case *Extension:
		// Two adjacent extensions always merge into one.
		merged := NewExtension(append(n.Segment.Clone(), c.Segment...), c.Child)
		t.arena.Remove(childHandle)
		t.arena.Set(h, merged)
		return h
	default:
		invariantViolation("mpt: extension cannot absorb child of kind %T", c)
		panic("unreachable")
	}
}

func (t *Trie) removeFromBranch(h Handle, n *Branch, path Path) (Handle, []byte, bool) {
	if len(path) == 0 {
		if n.Value == nil {
			return h, nil, false
		}
		value := n.Value
		n.Value = nil
		markDirty(n)
		return t.normalizeBranch(h, n), value, true
	}

	nibble := path[0]
	child := n.Children[nibble]
	if child.IsNull() {
		return h, nil, false
	}

	newChild, value, removed := t.removeAt(child, path[1:])
	if !removed {
		return h, nil, false
	}

	n.Children[nibble] = newChild
	markDirty(n)
	return t.normalizeBranch(h, n), value, true
}

// normalizeBranch re-establishes the branch-minimality rule after a value
// or child was cleared from n: a branch with fewer than two occupants
// collapses into a
// Leaf, an Extension, or nothing at all.
func (t *Trie) normalizeBranch(h Handle, n *Branch) Handle {
	switch n.Occupants() {
	case 0:
		t.arena.Remove(h)
		return NullHandle
	case 1:
		if n.Value != nil {
			t.arena.Set(h, NewLeaf(nil, n.Value))
			return h
		}

		idx := n.soleChildIndex()
		childHandle := n.Children[idx]
		nibble := byte(idx)

		switch c := t.arena.Get(childHandle).(type) {
		case *Leaf:
			merged := NewLeaf(append(Path{nibble}, c.Suffix...), c.Value)
			t.arena.Remove(childHandle)
			t.arena.Set(h, merged)
		case *Extension:
			merged := NewExtension(append(Path{nibble}, c.Segment...), c.Child)
			t.arena.Remove(childHandle)
			t.arena.Set(h, merged)
		case *Branch:
			t.arena.Set(h, NewExtension(Path{nibble}, childHandle))
		default:
			invariantViolation("mpt: branch cannot collapse into child of kind %T", c)
		}
		return h
	default:
		return h
	}
}

// Len returns the number of entries currently stored in the trie. It
// walks the whole structure, so it is O(n) rather than memoized.
func (t *Trie) Len() int {
	count := 0
	t.Walk(func([]byte, []byte) bool {
		count++
		return true
	})
	return count
}

// Walk performs a depth-first, ascending-nibble-order traversal of every
// (key, value) pair in the trie, calling visit for each. Traversal stops
// early if visit returns false. This is the full-traversal operation
// this module exposes (only range queries beyond it are out of scope).
func (t *Trie) Walk(visit func(key, value []byte) bool) {
	t.walk(t.root, nil, visit)
}

func (t *Trie) walk(h Handle, prefix Path, visit func(key, value []byte) bool) bool {
	if h.IsNull() {
		return true
	}
	switch n := t.arena.Get(h).(type) {
	case *Leaf:
		full := append(prefix.Clone(), n.Suffix...)
		if len(full)%2 != 0 {
			invariantViolation("mpt: leaf reached with odd total nibble length %d", len(full))
		}
		return visit(PathToBytes(full), n.Value)
	case *Extension:
		return t.walk(n.Child, append(prefix.Clone(), n.Segment...), visit)
	case *Branch:
		if n.Value != nil {
			if len(prefix)%2 != 0 {
				invariantViolation("mpt: branch value reached with odd total nibble length %d", len(prefix))
			}
			if !visit(PathToBytes(prefix), n.Value) {
				return false
			}
		}
		for i, child := range n.Children {
			if child.IsNull() {
				continue
			}
			childPrefix := append(prefix.Clone(), byte(i))
			if !t.walk(child, childPrefix, visit) {
				return false
			}
		}
		return true
	default:
		invariantViolation("mpt: walk encountered unknown node kind %T", n)
		panic("unreachable")
	}
}
