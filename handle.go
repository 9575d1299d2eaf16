// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import "weak"

// Handle is a weak reference to a registered listener, returned by
// AppendListener, PrependListener and InsertListener and consumed by
// RemoveListener and InsertListener's before-argument.
//
// A Handle never keeps the listener it refers to reachable: it is built on
// weak.Pointer, so once the listener list reclaims the underlying node the
// handle resolves to nil on its own, with no finalizer or explicit Close
// needed. The zero value of Handle is invalid and Valid reports false for
// it.
type Handle[A any] struct {
	ref weak.Pointer[listenerNode[A]]
	id  uint64
}

// Valid reports whether h still identifies a listener that has not been
// removed. A removed-but-not-yet-reclaimed node (because a traversal of its
// list is still in flight) also reports false here, even though the handle
// has not gone fully stale yet: liveness, not reachability, is what the
// dispatcher's invariants care about.
func (h Handle[A]) Valid() bool {
	node := h.ref.Value()
	return node != nil && node.id == h.id && node.alive.Load()
}

func (h Handle[A]) resolve() *listenerNode[A] {
	node := h.ref.Value()
	if node == nil || node.id != h.id {
		return nil
	}
	return node
}

func handleOf[A any](node *listenerNode[A]) Handle[A] {
	return Handle[A]{ref: weak.Make(node), id: node.id}
}
