package state

import (
	"crypto"
)

type (
	Options struct {
		hashAlgorithm crypto.Hash
		degree        int
	}

	Option func(o *Options)
)

func WithHashAlgorithm(hashAlgorithm crypto.Hash) Option {
	return func(o *Options) {
		o.hashAlgorithm = hashAlgorithm
	}
}

// WithDegree sets the degree of the B-tree holding the units.
func WithDegree(degree int) Option {
	return func(o *Options) {
		o.degree = degree
	}
}

func loadOptions(opts ...Option) *Options {
	options := &Options{
		hashAlgorithm: crypto.SHA256,
		degree:        32,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.degree < 2 {
		options.degree = 2
	}
	return options
}
