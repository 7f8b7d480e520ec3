// Copyright 2026 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ratelimit enforces a minimum interval between outbound requests.
//
// A typical use:
//
//	l := ratelimit.New(10) // at most 10 calls per second
//	if err := l.Wait(ctx); err != nil {
//	  return err
//	}
//	resp, err := doRequest()
//	l.Done()
package ratelimit

import (
	"context"
	"time"

	"github.com/stockparfait/errors"
)

// DefaultCallsPerSecond is the upstream API's documented request budget.
const DefaultCallsPerSecond = 10

// Limiter blocks callers until the configured interval has elapsed since the
// last completed call. It is not safe for concurrent use; the owner must
// serialize Wait / Done pairs.
type Limiter struct {
	interval time.Duration
	last     time.Time // time of the last completed call; zero before the first
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter allowing at most callsPerSecond calls per second. A
// non-positive rate disables waiting.
func New(callsPerSecond int) *Limiter {
	var interval time.Duration
	if callsPerSecond > 0 {
		interval = time.Second / time.Duration(callsPerSecond)
	}
	return NewInterval(interval)
}

// NewInterval creates a Limiter with an explicit minimum interval.
func NewInterval(interval time.Duration) *Limiter {
	if interval < 0 {
		interval = 0
	}
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// sleepContext sleeps for d or until the context is done, whichever is first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Interval returns the minimum interval between calls.
func (l *Limiter) Interval() time.Duration { return l.interval }

// Wait blocks until at least the interval has passed since the last call.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval == 0 || l.last.IsZero() {
		return nil
	}
	elapsed := l.now().Sub(l.last)
	if elapsed >= l.interval {
		return nil
	}
	if err := l.sleep(ctx, l.interval-elapsed); err != nil {
		return errors.Annotate(err, "interrupted while waiting %s", l.interval-elapsed)
	}
	return nil
}

// Done records the completion of a call. It must be called after the request
// has completed, regardless of its outcome.
func (l *Limiter) Done() {
	l.last = l.now()
}

// TestLimiter creates a Limiter with the given clock and sleeper. For use in
// tests.
func TestLimiter(interval time.Duration, now func() time.Time,
	sleep func(ctx context.Context, d time.Duration) error) *Limiter {
	l := NewInterval(interval)
	l.now = now
	l.sleep = sleep
	return l
}
