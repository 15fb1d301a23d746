package rpc

import "time"

type (
	Options struct {
		submitTimeout time.Duration
	}

	Option func(*Options)
)

func defaultOptions() *Options {
	return &Options{
		submitTimeout: 4 * time.Second,
	}
}

// WithSubmitTimeout sets how long the request waits for the submitted order
// to be executed.
func WithSubmitTimeout(timeout time.Duration) Option {
	return func(c *Options) {
		c.submitTimeout = timeout
	}
}
