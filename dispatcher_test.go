// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDirectDispatcherBasicFanOut mirrors test_dispatch.cpp's
// "dispatch, int, void ()": three listeners on the same key, invoked in
// registration order, each recording its position in that order.
func TestDirectDispatcherBasicFanOut(t *testing.T) {
	d := NewDirectDispatcher[int, int]()

	var order []int
	d.AppendListener(3, func(a *int) { order = append(order, 1) })
	d.AppendListener(3, func(a *int) { order = append(order, 2) })
	d.AppendListener(3, func(a *int) { order = append(order, 3) })

	v := 0
	d.Dispatch(3, &v)
	require.Equal(t, []int{1, 2, 3}, order)

	// a different, unregistered key dispatches as a no-op.
	d.Dispatch(4, &v)
	require.Equal(t, []int{1, 2, 3}, order)
}

// TestDirectDispatcherSelfRemovingChain mirrors test_dispatch.cpp's
// "add/remove, int, void ()" at the full dispatcher level (not just a
// listenerList): the first listener on key 3 removes both itself and the
// second listener on that same key.
func TestDirectDispatcherSelfRemovingChain(t *testing.T) {
	d := NewDirectDispatcher[int, int]()

	var a, b int
	var h1, h2 Handle[int]
	h1 = d.AppendListener(3, func(v *int) {
		a = 2
		d.RemoveListener(3, h2)
		d.RemoveListener(3, h1)
	})
	h2 = d.AppendListener(3, func(v *int) { b = 8 })

	v := 0
	d.Dispatch(3, &v)
	require.Equal(t, 2, a)
	require.Equal(t, 0, b)
	require.False(t, d.HasAnyListener(3))

	a = 0
	d.Dispatch(3, &v)
	require.Equal(t, 0, a)
}

// TestDirectDispatcherAppendDuringDispatch mirrors test_dispatch.cpp's
// "dispatch, add another listener inside a listener, int, void ()".
func TestDirectDispatcherAppendDuringDispatch(t *testing.T) {
	d := NewDirectDispatcher[int, int]()

	var a, b int
	d.AppendListener(3, func(v *int) {
		a = 2
		d.AppendListener(3, func(v *int) { b = 8 })
	})

	v := 0
	d.Dispatch(3, &v)
	require.Equal(t, 2, a)
	require.Equal(t, 0, b)

	d.Dispatch(3, &v)
	require.Equal(t, 8, b)
}

// TestDirectDispatcherReentrantCrossKeyDispatch mirrors test_dispatch.cpp's
// "dispatch inside dispatch, int, void ()": a listener on key 3 turns around
// and dispatches key 5 from within its own invocation (spec scenario 4).
func TestDirectDispatcherReentrantCrossKeyDispatch(t *testing.T) {
	d := NewDirectDispatcher[int, int]()

	var order []int
	d.AppendListener(3, func(v *int) {
		order = append(order, 3)
		v5 := 0
		d.Dispatch(5, &v5)
	})
	d.AppendListener(5, func(v *int) { order = append(order, 5) })

	v := 0
	d.Dispatch(3, &v)
	require.Equal(t, []int{3, 5}, order)
}

// TestDirectDispatcherMultiArgSignature mirrors test_dispatch.cpp's
// "dispatch, int, void (const std::string &, int)": listener signatures
// carry more than just the key's own payload.
func TestDirectDispatcherMultiArgSignature(t *testing.T) {
	type payload struct {
		text  string
		count int
	}
	d := NewDirectDispatcher[int, payload]()

	var gotText string
	var gotCount int
	d.AppendListener(3, func(p *payload) {
		gotText = p.text
		gotCount = p.count
	})

	p := payload{text: "hello", count: 5}
	d.Dispatch(3, &p)
	require.Equal(t, "hello", gotText)
	require.Equal(t, 5, gotCount)
}

func TestDirectDispatcherInsertListenerCrossKeyRejected(t *testing.T) {
	d := NewDirectDispatcher[int, int]()

	hOnKey3 := d.AppendListener(3, func(v *int) {})

	_, err := d.InsertListener(5, func(v *int) {}, hOnKey3)
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestDirectDispatcherInsertListenerSameKey(t *testing.T) {
	d := NewDirectDispatcher[int, int]()

	var order []int
	hb := d.AppendListener(3, func(v *int) { order = append(order, 2) })
	_, err := d.InsertListener(3, func(v *int) { order = append(order, 1) }, hb)
	require.NoError(t, err)
	d.AppendListener(3, func(v *int) { order = append(order, 3) })

	v := 0
	d.Dispatch(3, &v)
	require.Equal(t, []int{1, 2, 3}, order)
}

// TestDirectDispatcherListenerPanicTrapped mirrors the teacher's own
// TestOperationEvents/event_listener_panic subtests: a panicking listener
// must never escape Dispatch, and listeners registered after it on the
// same key must still run.
func TestDirectDispatcherListenerPanicTrapped(t *testing.T) {
	d := NewDirectDispatcher[int, int]()

	d.AppendListener(3, func(v *int) { panic("boom") })

	laterCalled := false
	d.AppendListener(3, func(v *int) { laterCalled = true })

	require.NotPanics(t, func() {
		v := 0
		d.Dispatch(3, &v)
	})
	require.True(t, laterCalled)
}

func TestDirectDispatcherHasAnyListener(t *testing.T) {
	d := NewDirectDispatcher[int, int]()
	require.False(t, d.HasAnyListener(3))

	h := d.AppendListener(3, func(v *int) {})
	require.True(t, d.HasAnyListener(3))

	d.RemoveListener(3, h)
	require.False(t, d.HasAnyListener(3))
}

// TestDirectDispatcherHighVolumeUniqueKeys mirrors test_dispatch.cpp's
// "dispatch many, int, void (int)" (spec scenario 7): a large number of
// distinct keys, one listener each, each dispatched exactly once, must each
// be invoked exactly once.
func TestDirectDispatcherHighVolumeUniqueKeys(t *testing.T) {
	const n = 1 << 16
	d := NewDirectDispatcher[int, int]()

	data := make([]int, n)
	for i := 0; i < n; i++ {
		i := i
		d.AppendListener(i, func(v *int) { data[i] = i + 1 })
	}

	v := 0
	for i := 0; i < n; i++ {
		d.Dispatch(i, &v)
	}

	for i := 0; i < n; i++ {
		require.Equal(t, i+1, data[i])
	}
}

// TestDirectDispatcherMultiThreading mirrors test_dispatch.cpp's
// "dispatch multi threading, int, void (int)" (spec scenario 8): many
// goroutines, each owning its own range of dedicated keys, appending one
// listener per key and dispatching each of those keys exactly once — every
// dedicated key must be observed exactly once, with no cross-talk between
// goroutines.
func TestDirectDispatcherMultiThreading(t *testing.T) {
	const goroutines = 256
	const keysPerGoroutine = 16

	d := NewDirectDispatcher[int, int]()

	var wg sync.WaitGroup
	wg.Add(goroutines)
	var total int32
	for g := 0; g < goroutines; g++ {
		g := g
		go func() {
			defer wg.Done()
			base := g * keysPerGoroutine
			for k := 0; k < keysPerGoroutine; k++ {
				key := base + k
				d.AppendListener(key, func(v *int) { atomic.AddInt32(&total, 1) })
			}
			for k := 0; k < keysPerGoroutine; k++ {
				key := base + k
				v := 0
				d.Dispatch(key, &v)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(goroutines*keysPerGoroutine), total)
}

// eventStruct is an eventpp-style multi-field event, grounded on
// test_dispatch.cpp's EventGetterBase/EventTypeGetter test case: the "type"
// field is what ExtractedDispatcher uses as its dispatch key, and the
// listener still receives the whole struct.
type eventStruct struct {
	eventType string
	sender    string
	message   string
}

func TestExtractedDispatcherKeyedOnStructField(t *testing.T) {
	d := NewExtractedDispatcher[string, eventStruct](func(e *eventStruct) string {
		return e.eventType
	})

	var gotSender, gotMessage string
	d.AppendListener("login", func(e *eventStruct) {
		gotSender = e.sender
		gotMessage = e.message
	})

	var logoutCalled bool
	d.AppendListener("logout", func(e *eventStruct) { logoutCalled = true })

	e := eventStruct{eventType: "login", sender: "alice", message: "hi"}
	d.Dispatch(&e)

	require.Equal(t, "alice", gotSender)
	require.Equal(t, "hi", gotMessage)
	require.False(t, logoutCalled)
}

func TestExtractedDispatcherHighVolumeUniqueKeys(t *testing.T) {
	const n = 1 << 12
	d := NewExtractedDispatcher[int, eventStruct](func(e *eventStruct) int {
		return len(e.eventType)
	})

	got := make([]int, n+1)
	for i := 1; i <= n; i++ {
		i := i
		d.AppendListener(i, func(e *eventStruct) { got[i] = i })
	}

	for i := 1; i <= n; i++ {
		e := eventStruct{eventType: strings.Repeat("x", i)}
		d.Dispatch(&e)
	}

	want := make([]int, n+1)
	for i := 1; i <= n; i++ {
		want[i] = i
	}
	require.Equal(t, want, got)
}
