// Copyright 2019 ChainSafe Systems (ON) Corp.
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import (
	"fmt"

	"github.com/disiqueira/gotree"
)

// String returns the trie stringified through pre-order traversal, for
// debugging.
func (t *Trie) String() string {
	if t.root.IsNull() {
		return "empty"
	}

	tree := gotree.New("Trie")
	t.print(tree, t.root, -1)
	return fmt.Sprintf("\n%s", tree.Print())
}

func (t *Trie) print(tree gotree.Tree, h Handle, nibble int) {
	switch n := t.arena.Get(h).(type) {
	case *Leaf:
		tree.Add(fmt.Sprintf("nibble=%d Leaf suffix=%x value=%x", nibble, n.Suffix, n.Value))
	case *Extension:
		sub := tree.Add(fmt.Sprintf("nibble=%d Extension segment=%x", nibble, n.Segment))
		t.print(sub, n.Child, -1)
	case *Branch:
		valueDescription := "<none>"
		if n.Value != nil {
			valueDescription = fmt.Sprintf("%x", n.Value)
		}
		sub := tree.Add(fmt.Sprintf("nibble=%d Branch value=%s", nibble, valueDescription))
		for i, child := range n.Children {
			if !child.IsNull() {
				t.print(sub, child, i)
			}
		}
	default:
		invariantViolation("mpt: print encountered unknown node kind %T", n)
	}
}

// Print writes the trie's pre-order traversal to stdout.
func (t *Trie) Print() {
	fmt.Println(t.String())
}
