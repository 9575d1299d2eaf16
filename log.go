// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import (
	"fmt"

	"github.com/gocarlos/eventpp/internal/xlog"
	"go.uber.org/zap"
)

// logPanic records a trapped listener or filter panic. The dispatcher's
// contract (§7) makes no guarantee about listener/filter failure beyond
// not propagating it to the dispatching caller; this is the one place that
// policy is exercised. Whether the stacktrace is included is controlled by
// Configure (dispatchcfg.Tuning.LogPanicStacktrace); it defaults to off.
func logPanic(kind string, recovered any) {
	fields := []zap.Field{
		zap.String("kind", kind),
		zap.String("recovered", fmt.Sprint(recovered)),
	}
	if logPanicStacktrace.Load() {
		fields = append(fields, zap.Stack("stacktrace"))
	}
	xlog.L().Warn("eventpp: recovered from panicking "+kind, fields...)
}
