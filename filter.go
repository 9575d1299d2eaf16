// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import "sync"

// Filter shares the listener signature but returns a boolean: false vetoes
// the dispatch, stopping the chain before any remaining filter or any
// listener runs. A filter may mutate *args; later filters and all
// listeners observe the mutation.
type Filter[A any] func(args *A) bool

// filterChain is the dispatcher's append-only, ordered list of filters
// (§4.3). There is no removal: a consumer needing dynamic filtering builds
// it above this layer, per spec.
type filterChain[A any] struct {
	mu      sync.Mutex
	filters []Filter[A]
}

func (c *filterChain[A]) append(filter Filter[A]) {
	c.mu.Lock()
	c.filters = append(c.filters, filter)
	c.mu.Unlock()
}

// snapshot takes the current slice header under the lock and returns it
// without copying elements: since filters is only ever appended to, never
// reassigned-to-shrink or mutated in place, a concurrent append beyond this
// snapshot's length either reallocates (leaving our backing array intact)
// or writes to indices at or past our length (which we never read). This
// is exactly the snapshot-then-iterate-unlocked discipline §4.4 specifies
// for the filter chain.
func (c *filterChain[A]) snapshot() []Filter[A] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// run executes the chain against args in order, stopping at the first
// filter returning false. It reports whether every filter passed, i.e.
// whether the dispatch should proceed to listeners. A panicking filter is
// trapped and treated as returning true, logged via the package logger —
// the core's no-guarantee-on-listener/filter-failure policy (§7) always
// traps and continues.
func (c *filterChain[A]) run(args *A) bool {
	for _, f := range c.snapshot() {
		if !invokeFiltered(f, args) {
			return false
		}
	}
	return true
}

func invokeFiltered[A any](f Filter[A], args *A) (passed bool) {
	passed = true
	defer func() {
		if r := recover(); r != nil {
			logPanic("filter", r)
			passed = true
		}
	}()
	passed = f(args)
	return
}
