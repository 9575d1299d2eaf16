// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import (
	"github.com/gocarlos/eventpp/internal/dispatchcfg"
	"github.com/gocarlos/eventpp/internal/xlog"
	"go.uber.org/atomic"
)

var (
	logPanicStacktrace    atomic.Bool
	listenerWarnThreshold atomic.Int64
)

// Configure applies t to the package's ambient logging behavior: it sets
// internal/xlog's level, whether a trapped listener/filter panic's
// stacktrace is included in the logged line, and the listener-list length
// past which AppendListener/PrependListener/InsertListener log a warning.
// Configure is safe to call at any time, including concurrently with
// dispatch; it takes effect for subsequent log lines only.
func Configure(t dispatchcfg.Tuning) {
	xlog.SetLevel(t.Level())
	logPanicStacktrace.Store(t.LogPanicStacktrace)
	listenerWarnThreshold.Store(int64(t.ListenerWarnThreshold))
}
