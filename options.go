package taskq

import "time"

type options struct {
	ttl          time.Duration
	log          Logger
	encoder      Encoder
	now          func() time.Time
	singleFlight bool
}

// Option configures a Service.
type Option func(*options)

// WithTTL sets the expiry of cached list pages. Non-positive values keep DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		o.ttl = d
	}
}

// WithLogger sets the logger for cache and store events.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithEncoder replaces the JSON encoder used for cached payloads.
func WithEncoder(e Encoder) Option {
	return func(o *options) {
		o.encoder = e
	}
}

// WithClock sets the time source used for scheduling and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithSingleFlight collapses concurrent cache misses on the same key into one
// task store query.
func WithSingleFlight(on bool) Option {
	return func(o *options) {
		o.singleFlight = on
	}
}
