// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package queue

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Scheduler re-enqueues a fixed envelope onto a Queue on a cron schedule —
// the "replay this event every night at 2am" case a plain Queue doesn't
// cover on its own.
type Scheduler[K comparable, A any] struct {
	cron *cron.Cron
}

// NewScheduler constructs an empty Scheduler. Call Start to begin running
// scheduled entries; Stop to halt it.
func NewScheduler[K comparable, A any]() *Scheduler[K, A] {
	return &Scheduler[K, A]{cron: cron.New()}
}

// Schedule registers key/args to be enqueued onto q every time spec (a
// standard five-field cron expression, or a descriptor such as "@hourly" or
// "@every 1m") fires. It returns the entry ID,
// which can be passed to Unschedule.
func (s *Scheduler[K, A]) Schedule(spec string, q *Queue[K, A], key K, args A) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		_, _ = q.Enqueue(context.Background(), key, args)
	})
}

// Unschedule removes a previously scheduled entry.
func (s *Scheduler[K, A]) Unschedule(id cron.EntryID) {
	s.cron.Remove(id)
}

// Start begins running scheduled entries in the background.
func (s *Scheduler[K, A]) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for any running entry to finish.
func (s *Scheduler[K, A]) Stop() {
	<-s.cron.Stop().Done()
}
