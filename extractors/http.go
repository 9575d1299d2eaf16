// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package extractors provides ready-made Extracted-Key policies for common
// carrier types, so callers wiring an eventpp.ExtractedDispatcher to an
// HTTP server or an AMQP consumer don't each hand-write the same key
// function.
package extractors

import (
	"fmt"
	"net/http"
)

// HTTPRequestEvent is the argument type an HTTP-routed ExtractedDispatcher
// dispatches: the inbound request plus the ResponseWriter listeners should
// write to.
type HTTPRequestEvent struct {
	Request *http.Request
	Writer  http.ResponseWriter
}

// HTTPMethodAndPath extracts "<METHOD> <path>" as the dispatch key, e.g.
// "GET /users/42". Use it with eventpp.NewExtractedDispatcher to route
// inbound requests to listeners keyed by method and path.
func HTTPMethodAndPath(e *HTTPRequestEvent) string {
	return fmt.Sprintf("%s %s", e.Request.Method, e.Request.URL.Path)
}

// HTTPPathOnly extracts just the request path, ignoring method — useful
// when all listeners for a path handle every method themselves.
func HTTPPathOnly(e *HTTPRequestEvent) string {
	return e.Request.URL.Path
}
