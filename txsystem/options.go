package txsystem

import (
	"crypto"
	"errors"

	"github.com/flightsurety/flightsurety/state"
)

type (
	Options struct {
		hashAlgorithm crypto.Hash
		state         *state.State
		maxTimeout    uint64
	}

	Option func(*Options)
)

func defaultOptions() *Options {
	return &Options{
		hashAlgorithm: crypto.SHA256,
		state:         state.NewEmptyState(),
		maxTimeout:    DefaultMaxTimeout,
	}
}

func (o *Options) validate() error {
	if o.state == nil {
		return errors.New("state must not be nil")
	}
	if !o.hashAlgorithm.Available() {
		return errors.New("hash algorithm is not available")
	}
	if o.maxTimeout == 0 {
		return errors.New("max timeout must be greater than zero")
	}
	return nil
}

// WithHashAlgorithm sets the algorithm of transaction record hashes and unit ledgers.
func WithHashAlgorithm(algorithm crypto.Hash) Option {
	return func(o *Options) {
		o.hashAlgorithm = algorithm
	}
}

// WithState makes the tx system execute orders on top of s instead of an empty state.
func WithState(s *state.State) Option {
	return func(o *Options) {
		o.state = s
	}
}

/*
WithMaxTimeout sets how many rounds ahead of the current round the timeout of
an order may be. Executed orders are remembered until they time out.
*/
func WithMaxTimeout(rounds uint64) Option {
	return func(o *Options) {
		o.maxTimeout = rounds
	}
}
