// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import (
	"sync"

	"go.uber.org/atomic"
)

// Listener is a callable registered against a key. It is invoked with the
// dispatch arguments, by pointer so that earlier filters' mutations are
// observed and so listeners share the same reference-ness as filters.
type Listener[A any] func(args *A)

// listenerNode is one link of a listenerList's doubly linked chain. Nodes
// are exclusively owned by the list that created them: Handle only ever
// holds a weak reference to one.
type listenerNode[A any] struct {
	listener Listener[A]
	id       uint64
	alive    atomic.Bool

	prev, next *listenerNode[A]
}

// listenerList is the per-key ordered registry of §4.1: a sentinel-headed
// doubly linked list whose structural mutations are guarded by mu, and
// whose traversals tolerate concurrent append/remove — including
// self-removal from within the very listener being invoked — by deferring
// physical unlink until no traversal is in flight.
type listenerList[A any] struct {
	mu sync.Mutex

	head, tail *listenerNode[A] // sentinels; real nodes live strictly between them

	activeIterations int
	pendingReclaim   map[*listenerNode[A]]struct{}

	nextID    atomic.Uint64
	aliveSize atomic.Int64
}

func newListenerList[A any]() *listenerList[A] {
	head := &listenerNode[A]{}
	tail := &listenerNode[A]{}
	head.next = tail
	tail.prev = head
	return &listenerList[A]{head: head, tail: tail}
}

// linkBefore splices node into the chain immediately before anchor. Caller
// holds mu.
func (l *listenerList[A]) linkBefore(node, anchor *listenerNode[A]) {
	prev := anchor.prev
	node.prev = prev
	node.next = anchor
	prev.next = node
	anchor.prev = node
}

// unlinkPhysical removes node from the chain entirely. Caller holds mu and
// guarantees no traversal is in flight (activeIterations == 0): while one
// is, the node's links must stay intact so traversals already holding a
// cursor at or before this node can still advance past it.
func (l *listenerList[A]) unlinkPhysical(node *listenerNode[A]) {
	node.prev.next = node.next
	node.next.prev = node.prev
	node.prev = nil
	node.next = nil
}

func (l *listenerList[A]) newNode(listener Listener[A]) *listenerNode[A] {
	node := &listenerNode[A]{listener: listener, id: l.nextID.Add(1)}
	node.alive.Store(true)
	return node
}

// Append adds listener at the end of the list.
func (l *listenerList[A]) Append(listener Listener[A]) Handle[A] {
	l.mu.Lock()
	node := l.newNode(listener)
	l.linkBefore(node, l.tail)
	l.mu.Unlock()
	l.aliveSize.Add(1)
	return handleOf(node)
}

// Prepend adds listener at the front of the list.
func (l *listenerList[A]) Prepend(listener Listener[A]) Handle[A] {
	l.mu.Lock()
	node := l.newNode(listener)
	l.linkBefore(node, l.head.next)
	l.mu.Unlock()
	l.aliveSize.Add(1)
	return handleOf(node)
}

// InsertBefore adds listener immediately before the node identified by
// before. It fails with ErrInvalidHandle if before does not identify a
// currently alive node of this list.
func (l *listenerList[A]) InsertBefore(before Handle[A], listener Listener[A]) (Handle[A], error) {
	l.mu.Lock()
	anchor := before.resolve()
	found := false
	if anchor != nil && anchor.alive.Load() {
		for n := l.head.next; n != l.tail; n = n.next {
			if n == anchor {
				found = true
				break
			}
		}
	}
	if !found {
		l.mu.Unlock()
		return Handle[A]{}, ErrInvalidHandle
	}
	node := l.newNode(listener)
	l.linkBefore(node, anchor)
	l.mu.Unlock()
	l.aliveSize.Add(1)
	return handleOf(node), nil
}

// Remove clears the liveness of the node h identifies. It reports whether
// the node was alive immediately before the call; removing an
// already-removed or never-valid handle, or one whose node belongs to a
// different list, is a no-op that reports false.
//
// Physical unlink is deferred while a traversal of this list is in flight
// (§4.1): the node's links stay valid so the traversal can still advance
// past it, and the last traversal to finish drains the pending-reclaim set.
func (l *listenerList[A]) Remove(h Handle[A]) bool {
	node := h.resolve()
	if node == nil {
		return false
	}

	l.mu.Lock()
	found := false
	for n := l.head.next; n != l.tail; n = n.next {
		if n == node {
			found = true
			break
		}
	}
	if !found || !node.alive.CompareAndSwap(true, false) {
		l.mu.Unlock()
		return false
	}
	l.aliveSize.Add(-1)

	if l.activeIterations == 0 {
		l.unlinkPhysical(node)
	} else {
		if l.pendingReclaim == nil {
			l.pendingReclaim = make(map[*listenerNode[A]]struct{})
		}
		l.pendingReclaim[node] = struct{}{}
	}
	l.mu.Unlock()
	return true
}

// HasAlive reports whether the list currently holds any alive listener.
func (l *listenerList[A]) HasAlive() bool {
	return l.aliveSize.Load() > 0
}

// Size reports the number of currently alive listeners in the list.
func (l *listenerList[A]) Size() int64 {
	return l.aliveSize.Load()
}

// ForEach performs one forward traversal of the list, invoking fn for every
// node that is alive at the moment the traversal reaches it. The traversal
// mutex is held only for the link-following step; it is released around
// each invocation of fn and reacquired before advancing, so fn is free to
// append, remove (including removing its own handle) or dispatch
// re-entrantly without deadlocking.
//
// A snapshot of the current tail is taken before the first step: nodes
// appended after the snapshot, including ones appended by fn itself, are
// not observed by this traversal, matching §4.1's append-during-dispatch
// rule.
func (l *listenerList[A]) ForEach(fn func(Listener[A])) {
	l.mu.Lock()
	l.activeIterations++
	cursor := l.head.next
	endpoint := l.tail.prev
	l.mu.Unlock()

	for cursor != l.tail {
		l.mu.Lock()
		node := cursor
		next := node.next
		alive := node.alive.Load()
		l.mu.Unlock()

		if alive {
			fn(node.listener)
		}

		if node == endpoint {
			break
		}
		cursor = next
	}

	l.mu.Lock()
	l.activeIterations--
	if l.activeIterations == 0 && len(l.pendingReclaim) > 0 {
		for node := range l.pendingReclaim {
			l.unlinkPhysical(node)
		}
		l.pendingReclaim = nil
	}
	l.mu.Unlock()
}
