// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import (
	"fmt"
	"sync"

	"github.com/gocarlos/eventpp/internal/xlog"
	"go.uber.org/zap"
)

// registry is the shared core bound by both DirectDispatcher and
// ExtractedDispatcher: a key map of listener lists plus a filter chain.
// The key map is guarded by a read-mostly RWMutex (§4.4): RLock covers the
// common case of looking up an already-created list, Lock is only taken to
// install a new one. Lock order is always key map then listener list,
// never the reverse, and the filter chain's lock is independent of both.
type registry[K comparable, A any] struct {
	keyMapMu sync.RWMutex
	keyMap   map[K]*listenerList[A]

	filters filterChain[A]
}

func (r *registry[K, A]) listFor(key K) *listenerList[A] {
	r.keyMapMu.RLock()
	list, ok := r.keyMap[key]
	r.keyMapMu.RUnlock()
	if ok {
		return list
	}

	r.keyMapMu.Lock()
	defer r.keyMapMu.Unlock()
	if list, ok = r.keyMap[key]; ok {
		return list
	}
	list = newListenerList[A]()
	if r.keyMap == nil {
		r.keyMap = make(map[K]*listenerList[A])
	}
	r.keyMap[key] = list
	xlog.L().Debug("eventpp: creating listener list", zap.String("key", fmt.Sprint(key)))
	return list
}

// warnIfOverThreshold logs a warning when key's list has grown past the
// configured ListenerWarnThreshold (see Configure). A threshold of zero,
// the default, disables the check entirely.
func (r *registry[K, A]) warnIfOverThreshold(key K, list *listenerList[A]) {
	threshold := listenerWarnThreshold.Load()
	if threshold <= 0 {
		return
	}
	if size := list.Size(); size > threshold {
		xlog.L().Warn("eventpp: listener list exceeds warn threshold",
			zap.String("key", fmt.Sprint(key)),
			zap.Int64("size", size),
			zap.Int64("threshold", threshold),
		)
	}
}

func (r *registry[K, A]) lookup(key K) (*listenerList[A], bool) {
	r.keyMapMu.RLock()
	defer r.keyMapMu.RUnlock()
	list, ok := r.keyMap[key]
	return list, ok
}

// AppendListener adds listener at the end of key's list, creating the list
// if this is the first listener registered for key.
func (r *registry[K, A]) AppendListener(key K, listener Listener[A]) Handle[A] {
	list := r.listFor(key)
	h := list.Append(listener)
	r.warnIfOverThreshold(key, list)
	return h
}

// PrependListener adds listener at the front of key's list.
func (r *registry[K, A]) PrependListener(key K, listener Listener[A]) Handle[A] {
	list := r.listFor(key)
	h := list.Prepend(listener)
	r.warnIfOverThreshold(key, list)
	return h
}

// InsertListener adds listener immediately before the listener identified
// by before, which must be alive in key's list. It fails with
// ErrInvalidHandle otherwise — including when before belongs to a
// different key's list, since cross-linking lists would violate the key
// map's invariant that a list only ever holds its own key's nodes.
func (r *registry[K, A]) InsertListener(key K, listener Listener[A], before Handle[A]) (Handle[A], error) {
	list := r.listFor(key)
	h, err := list.InsertBefore(before, listener)
	if err != nil {
		return Handle[A]{}, wrapInvalidHandle("InsertListener")
	}
	r.warnIfOverThreshold(key, list)
	return h, nil
}

// RemoveListener removes the listener identified by handle from key's
// list. It reports whether the listener was alive immediately before the
// call; removing an already-removed handle is idempotent and reports
// false without error.
func (r *registry[K, A]) RemoveListener(key K, handle Handle[A]) bool {
	list, ok := r.lookup(key)
	if !ok {
		return false
	}
	return list.Remove(handle)
}

// HasAnyListener reports whether key currently has any alive listener.
func (r *registry[K, A]) HasAnyListener(key K) bool {
	list, ok := r.lookup(key)
	return ok && list.HasAlive()
}

// AppendFilter adds filter to the end of the dispatcher's filter chain.
// There is no corresponding remove: filters share the dispatcher's
// lifetime.
func (r *registry[K, A]) AppendFilter(filter Filter[A]) {
	r.filters.append(filter)
}

// dispatchKey runs the filter chain against args, and — unless a filter
// vetoes the dispatch — invokes every listener registered for key, in
// registration order, with the (possibly filter-mutated) args. Dispatching
// a key with no registered listeners is a successful no-op.
func (r *registry[K, A]) dispatchKey(key K, args *A) {
	if !r.filters.run(args) {
		return
	}
	list, ok := r.lookup(key)
	if !ok {
		return
	}
	list.ForEach(func(listener Listener[A]) {
		invokeListener(listener, args)
	})
}

func invokeListener[A any](listener Listener[A], args *A) {
	defer func() {
		if r := recover(); r != nil {
			logPanic("listener", r)
		}
	}()
	listener(args)
}

// DirectDispatcher is the spec's Direct-Key variant (§4.2): callers pass
// the key alongside the dispatch arguments, and listener signatures omit
// it.
type DirectDispatcher[K comparable, A any] struct {
	registry[K, A]
}

// NewDirectDispatcher constructs an empty DirectDispatcher for key type K
// and argument type A.
func NewDirectDispatcher[K comparable, A any]() *DirectDispatcher[K, A] {
	return &DirectDispatcher[K, A]{}
}

// Dispatch derives no key of its own: key is taken verbatim, matching
// spec.md's Direct-Key policy contract.
func (d *DirectDispatcher[K, A]) Dispatch(key K, args *A) {
	d.dispatchKey(key, args)
}

// KeyExtractor computes the dispatch key from the arguments of an
// Extracted-Key dispatch. It must be deterministic and side-effect free;
// the dispatcher calls it exactly once per Dispatch.
type KeyExtractor[K comparable, A any] func(args *A) K

// ExtractedDispatcher is the spec's Extracted-Key variant (§4.2): the key
// is computed from the dispatch arguments by a user-supplied, pure
// function bound once at construction, and listener signatures receive the
// full arguments including the value the key was extracted from.
type ExtractedDispatcher[K comparable, A any] struct {
	registry[K, A]
	extract KeyExtractor[K, A]
}

// NewExtractedDispatcher constructs an ExtractedDispatcher that derives its
// dispatch key from args via extract.
func NewExtractedDispatcher[K comparable, A any](extract KeyExtractor[K, A]) *ExtractedDispatcher[K, A] {
	return &ExtractedDispatcher[K, A]{extract: extract}
}

// Dispatch derives the key from args via the bound extractor, then runs
// filters and listeners exactly as DirectDispatcher.Dispatch does.
func (d *ExtractedDispatcher[K, A]) Dispatch(args *A) {
	key := d.extract(args)
	d.dispatchKey(key, args)
}
