package surety

import (
	"crypto"

	"github.com/holiman/uint256"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/types"
)

// DefaultMinimumStake is 10 ether.
var DefaultMinimumStake = new(uint256.Int).Mul(uint256.NewInt(10), types.Ether)

type (
	Options struct {
		state         *state.State
		hashAlgorithm crypto.Hash
		admin         types.Address
		app           types.Address
		minimumStake  *uint256.Int
		maxTimeout    uint64
	}

	Option func(*Options)
)

func defaultOptions() *Options {
	return &Options{
		hashAlgorithm: crypto.SHA256,
		minimumStake:  DefaultMinimumStake,
		maxTimeout:    txsystem.DefaultMaxTimeout,
	}
}

func WithState(s *state.State) Option {
	return func(g *Options) {
		g.state = s
	}
}

func WithHashAlgorithm(hashAlgorithm crypto.Hash) Option {
	return func(g *Options) {
		g.hashAlgorithm = hashAlgorithm
	}
}

// WithAdmin sets the administrator of the registry.
func WithAdmin(admin types.Address) Option {
	return func(g *Options) {
		g.admin = admin
	}
}

// WithApp sets the identity the airline registry uses when calling the data store.
func WithApp(app types.Address) Option {
	return func(g *Options) {
		g.app = app
	}
}

func WithMinimumStake(amount *uint256.Int) Option {
	return func(g *Options) {
		g.minimumStake = amount
	}
}

// WithMaxTimeout sets how many rounds ahead of the current round the timeout of an order may be.
func WithMaxTimeout(rounds uint64) Option {
	return func(g *Options) {
		g.maxTimeout = rounds
	}
}
