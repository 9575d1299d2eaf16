// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package eventpp implements a synchronous, generic, in-process event
// dispatcher: listeners are appended under a key and invoked, in
// registration order, whenever that key is dispatched. A filter chain may
// veto a dispatch or mutate its arguments before listeners observe them.
//
// The package does no I/O, spawns no goroutines, and queues nothing; it is
// a building block other packages compose to get asynchronous delivery,
// transport, or persistence. See the queue package for one such
// collaborator.
package eventpp
