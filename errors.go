// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package eventpp

import "github.com/pkg/errors"

// ErrInvalidHandle is returned by InsertListener when the given handle does
// not identify a currently alive listener node in the key's list (the
// insertion point no longer exists, or belongs to another key). Removal is
// idempotent and does not use this error: RemoveListener reports the same
// condition by returning false.
var ErrInvalidHandle = errors.New("eventpp: invalid handle")

// wrapInvalidHandle annotates ErrInvalidHandle with the operation that
// observed it, without changing its identity for errors.Is.
func wrapInvalidHandle(op string) error {
	return errors.Wrapf(ErrInvalidHandle, "eventpp: %s", op)
}
