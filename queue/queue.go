// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package queue is an asynchronous delivery adapter that sits in front of
// an eventpp Dispatcher: it owns a worker pool that pops queued envelopes
// and replays them through a synchronous Dispatch call. It is a
// collaborator of the core dispatcher, not a replacement for it — the
// dispatcher itself stays synchronous and has no knowledge this package
// exists.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gocarlos/eventpp"
	"github.com/gocarlos/eventpp/internal/xlog"
	"go.uber.org/zap"
)

// Envelope wraps a queued dispatch: the key it will eventually be
// dispatched under, its arguments, and an ID used for log correlation.
// No Backlog in this package de-duplicates envelopes by ID.
type Envelope[K comparable, A any] struct {
	ID   uuid.UUID
	Key  K
	Args A
}

// Backlog is the pluggable storage a Queue drains from. The in-process
// implementation is a buffered Go channel (NewChannelBacklog); RedisBacklog
// backs the same interface with a Redis list for multi-process fan-in.
type Backlog[K comparable, A any] interface {
	Push(ctx context.Context, env Envelope[K, A]) error
	Pop(ctx context.Context) (Envelope[K, A], error)
}

// Queue drains a Backlog and replays each popped envelope through a
// DirectDispatcher, using a fixed-size pool of worker goroutines.
type Queue[K comparable, A any] struct {
	dispatcher *eventpp.DirectDispatcher[K, A]
	backlog    Backlog[K, A]
	workers    int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New constructs a Queue that replays popped envelopes through dispatcher
// using workers concurrent goroutines. workers is clamped to at least 1.
func New[K comparable, A any](dispatcher *eventpp.DirectDispatcher[K, A], backlog Backlog[K, A], workers int) *Queue[K, A] {
	if workers < 1 {
		workers = 1
	}
	return &Queue[K, A]{dispatcher: dispatcher, backlog: backlog, workers: workers}
}

// Enqueue pushes args onto the backlog under key, tagging it with a fresh
// UUID for correlation, and returns that ID.
func (q *Queue[K, A]) Enqueue(ctx context.Context, key K, args A) (uuid.UUID, error) {
	id := uuid.New()
	env := Envelope[K, A]{ID: id, Key: key, Args: args}
	if err := q.backlog.Push(ctx, env); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Start launches the worker pool. It returns immediately; call Stop to
// shut the workers down.
func (q *Queue[K, A]) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	q.wg.Add(q.workers)
	for i := 0; i < q.workers; i++ {
		go q.worker(ctx)
	}
}

func (q *Queue[K, A]) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		env, err := q.backlog.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			xlog.L().Warn("queue: pop failed", zap.Error(err))
			continue
		}
		args := env.Args
		xlog.L().Debug("queue: replaying envelope", zap.String("id", env.ID.String()))
		q.dispatcher.Dispatch(env.Key, &args)
	}
}

// Stop cancels the worker pool's context and waits for every worker
// goroutine to return.
func (q *Queue[K, A]) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

// channelBacklog is the default, in-process Backlog: a buffered channel.
type channelBacklog[K comparable, A any] struct {
	ch chan Envelope[K, A]
}

// NewChannelBacklog returns a Backlog backed by an in-process buffered
// channel of the given capacity.
func NewChannelBacklog[K comparable, A any](capacity int) Backlog[K, A] {
	return &channelBacklog[K, A]{ch: make(chan Envelope[K, A], capacity)}
}

func (b *channelBacklog[K, A]) Push(ctx context.Context, env Envelope[K, A]) error {
	select {
	case b.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *channelBacklog[K, A]) Pop(ctx context.Context) (Envelope[K, A], error) {
	select {
	case env := <-b.ch:
		return env, nil
	case <-ctx.Done():
		var zero Envelope[K, A]
		return zero, ctx.Err()
	}
}

// RedisBacklog backs Backlog with a single Redis list, using RPUSH/BLPOP so
// multiple producer processes can feed one or more Queue consumers. Keys
// and args are carried opaquely via a caller-supplied codec, since eventpp's
// core places no requirement on K/A being serializable.
type RedisBacklog[K comparable, A any] struct {
	client *goredis.Client
	key    string
	encode func(Envelope[K, A]) (string, error)
	decode func(string) (Envelope[K, A], error)
}

// NewRedisBacklog constructs a RedisBacklog that pushes/pops envelopes
// against the Redis list named key.
func NewRedisBacklog[K comparable, A any](
	client *goredis.Client,
	key string,
	encode func(Envelope[K, A]) (string, error),
	decode func(string) (Envelope[K, A], error),
) *RedisBacklog[K, A] {
	return &RedisBacklog[K, A]{client: client, key: key, encode: encode, decode: decode}
}

func (b *RedisBacklog[K, A]) Push(ctx context.Context, env Envelope[K, A]) error {
	payload, err := b.encode(env)
	if err != nil {
		return err
	}
	return b.client.RPush(ctx, b.key, payload).Err()
}

func (b *RedisBacklog[K, A]) Pop(ctx context.Context) (Envelope[K, A], error) {
	const blockTimeout = 5 * time.Second
	res, err := b.client.BLPop(ctx, blockTimeout, b.key).Result()
	if err != nil {
		var zero Envelope[K, A]
		return zero, err
	}
	// BLPop returns [key, value]; the value is the second element.
	return b.decode(res[1])
}
