// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import "github.com/gammazero/deque"

// Handle is a stable, opaque reference into a Trie's arena. It is never
// reused for a different node while that node is reachable from the root;
// once Arena.Remove frees a slot the handle becomes invalid and a later
// Get of it is a caller error, matched here by a panic (until a later
// Insert recycles the slot, after which the stale handle resolves to the
// new node) rather
// than a recoverable error, since it indicates a bug in the trie's own
// bookkeeping, not in caller input.
type Handle struct {
	idx int
}

// NullHandle is the sentinel meaning "no child" / "no root".
var NullHandle = Handle{idx: -1}

// IsNull reports whether h is the sentinel null handle.
func (h Handle) IsNull() bool {
	return h.idx < 0
}

// Arena is an append-mostly pool owning every Node of a Trie. Nodes are
// referenced by Handle, never by direct pointer, so that reparenting a
// subtree during insert/remove never aliases a node two branches are
// simultaneously rewriting.
//
// Freed slots are recycled via a FIFO free list, giving O(1) amortized allocation without
// letting the arena grow unboundedly across long insert/remove sequences.
type Arena struct {
	slots []arenaSlot
	free  deque.Deque[int]
}

type arenaSlot struct {
	node Node
	live bool
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{slots: make([]arenaSlot, 0)}
}

// Insert stores node in the arena and returns a handle to it.
func (a *Arena) Insert(node Node) Handle {
	if a.free.Len() > 0 {
		idx := a.free.PopFront()
		a.slots[idx] = arenaSlot{node: node, live: true}
		return Handle{idx: idx}
	}
	a.slots = append(a.slots, arenaSlot{node: node, live: true})
	return Handle{idx: len(a.slots) - 1}
}

// Get returns the node referenced by h. It panics if h is null or the
// slot it names has been freed: both are caller contract violations,
// never ordinary control flow.
func (a *Arena) Get(h Handle) Node {
	a.mustBeLive(h)
	return a.slots[h.idx].node
}

// Set overwrites the node stored at h in place.
func (a *Arena) Set(h Handle, node Node) {
	a.mustBeLive(h)
	a.slots[h.idx].node = node
}

// Remove frees h's slot for reuse and returns the node that occupied it.
func (a *Arena) Remove(h Handle) Node {
	a.mustBeLive(h)
	node := a.slots[h.idx].node
	a.slots[h.idx] = arenaSlot{}
	a.free.PushBack(h.idx)
	return node
}

func (a *Arena) mustBeLive(h Handle) {
	if h.IsNull() {
		panic("mpt: dereferenced the null handle")
	}
	if h.idx >= len(a.slots) || !a.slots[h.idx].live {
		panic("mpt: use of a handle into a freed arena slot")
	}
}

// Len returns the number of live (non-freed) nodes in the arena.
func (a *Arena) Len() int {
	return len(a.slots) - a.free.Len()
}
