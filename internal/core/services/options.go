package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
)

var tracer = otel.Tracer("load-actions.services")

// SleepFunc suspends for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option customises a service.
type Option func(*options)

type options struct {
	sleep    SleepFunc
	now      func() time.Time
	recorder driven.Recorder
}

func newOptions(opts []Option) options {
	o := options{
		sleep:    Sleep,
		now:      time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSleep replaces the function used for every wait.
func WithSleep(sleep SleepFunc) Option {
	return func(o *options) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder driven.Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) SearchPage(domain.ResultKind)                      {}
func (nopRecorder) Retry(domain.ErrorKind)                            {}
func (nopRecorder) RateLimitWait(domain.ResourceClass, time.Duration) {}
func (nopRecorder) Candidate(domain.Origin)                           {}
func (nopRecorder) CloneFailure()                                     {}
