package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/holiman/uint256"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem/surety"
	"github.com/flightsurety/flightsurety/types"
)

var (
	ErrGenesisIsNil        = errors.New("genesis is nil")
	ErrAdminIsMissing      = errors.New("administrator address is missing")
	ErrFirstAirlineMissing = errors.New("first airline address is missing")
	ErrAppIsMissing        = errors.New("application identity is missing")
)

// Genesis is the configuration of the registry at round 0.
type Genesis struct {
	Admin        types.Address   `json:"admin"`
	FirstAirline types.Address   `json:"firstAirline"`
	App          types.Address   `json:"app"`
	Authorized   []types.Address `json:"authorized,omitempty"`
	MinimumStake string          `json:"minimumStake"` // decimal wei
}

// NewGenesis returns genesis with the application identity authorized and
// the default minimum stake.
func NewGenesis(admin, firstAirline, app types.Address, authorized ...types.Address) *Genesis {
	g := &Genesis{
		Admin:        admin,
		FirstAirline: firstAirline,
		App:          app,
		MinimumStake: surety.DefaultMinimumStake.Dec(),
	}
	for _, addr := range append([]types.Address{app}, authorized...) {
		if !slices.Contains(g.Authorized, addr) {
			g.Authorized = append(g.Authorized, addr)
		}
	}
	return g
}

func (g *Genesis) IsValid() error {
	if g == nil {
		return ErrGenesisIsNil
	}
	if g.Admin == (types.Address{}) {
		return ErrAdminIsMissing
	}
	if g.FirstAirline == (types.Address{}) {
		return ErrFirstAirlineMissing
	}
	if g.App == (types.Address{}) {
		return ErrAppIsMissing
	}
	for i, addr := range g.Authorized {
		if addr == (types.Address{}) {
			return fmt.Errorf("authorized caller %d: address is missing", i)
		}
	}
	stake, err := g.MinimumStakeAmount()
	if err != nil {
		return err
	}
	if stake.IsZero() {
		return errors.New("minimum stake must be greater than zero")
	}
	return nil
}

func (g *Genesis) MinimumStakeAmount() (*uint256.Int, error) {
	return types.ParseAmount(g.MinimumStake)
}

// State creates the committed state of round 0.
func (g *Genesis) State(opts ...state.Option) (*state.State, error) {
	if err := g.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	return surety.NewGenesisState(g.Admin, g.FirstAirline, g.Authorized, opts...)
}

// TxSystemOptions returns the options to create the transaction system of the registry over s.
func (g *Genesis) TxSystemOptions(s *state.State) ([]surety.Option, error) {
	stake, err := g.MinimumStakeAmount()
	if err != nil {
		return nil, err
	}
	return []surety.Option{
		surety.WithState(s),
		surety.WithAdmin(g.Admin),
		surety.WithApp(g.App),
		surety.WithMinimumStake(stake),
	}, nil
}

func LoadGenesis(path string) (*Genesis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}
	g := &Genesis{}
	if err := json.Unmarshal(b, g); err != nil {
		return nil, fmt.Errorf("decoding genesis file %s: %w", path, err)
	}
	if err := g.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid genesis file %s: %w", path, err)
	}
	return g, nil
}

func SaveGenesis(path string, g *Genesis) error {
	b, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	return os.WriteFile(path, b, 0600)
}
