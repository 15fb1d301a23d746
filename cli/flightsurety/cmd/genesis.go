package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flightsurety/flightsurety/node"
	"github.com/flightsurety/flightsurety/txsystem/surety"
	"github.com/flightsurety/flightsurety/types"
)

const (
	genesisFileName = "genesis.json"
	stateFileName   = "state.cbor"
)

type genesisConfig struct {
	Base *baseConfiguration

	Admin        string
	FirstAirline string
	App          string
	Authorize    []string
	MinimumStake string
	OutputDir    string
	Force        bool
}

// newGenesisCmd creates a new cobra command for the registry genesis.
func newGenesisCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &genesisConfig{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "genesis",
		Short: "Generates the genesis file and the initial state of the airline registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genesisRunFunc(cmd.Context(), config)
		},
	}

	cmd.Flags().StringVar(&config.Admin, "admin", "", "address of the administrator")
	cmd.Flags().StringVar(&config.FirstAirline, "first-airline", "", "address of the airline registered at genesis")
	cmd.Flags().StringVar(&config.App, "app", "", "address of the application component, authorized at genesis")
	cmd.Flags().StringSliceVar(&config.Authorize, "authorize", nil, "addresses of additional callers authorized at genesis")
	cmd.Flags().StringVar(&config.MinimumStake, "minimum-stake", surety.DefaultMinimumStake.Dec(), "minimum stake of an airline in wei")
	cmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", "", "directory of the genesis and state files (default $FS_HOME)")
	cmd.Flags().BoolVarP(&config.Force, "force", "f", false, "overwrite existing genesis files")
	for _, flag := range []string{"admin", "first-airline", "app"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
	return cmd
}

func genesisRunFunc(_ context.Context, config *genesisConfig) error {
	g, err := config.genesis()
	if err != nil {
		return err
	}
	if err := g.IsValid(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	outputDir := config.outputDir()
	genesisFile := filepath.Join(outputDir, genesisFileName)
	stateFile := filepath.Join(outputDir, stateFileName)
	if !config.Force {
		for _, f := range []string{genesisFile, stateFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("genesis file %s exists", f)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	if err := os.MkdirAll(outputDir, 0700); err != nil { // -rwx------
		return fmt.Errorf("creating output directory: %w", err)
	}

	s, err := g.State()
	if err != nil {
		return fmt.Errorf("creating genesis state: %w", err)
	}
	if err := writeStateFile(stateFile, s.Serialize); err != nil {
		return err
	}
	if err := node.SaveGenesis(genesisFile, g); err != nil {
		return err
	}
	consoleWriter.Printf("Genesis file: %s\nState file: %s\n", genesisFile, stateFile)
	return nil
}

func (c *genesisConfig) genesis() (*node.Genesis, error) {
	admin, err := types.ParseAddress(c.Admin)
	if err != nil {
		return nil, fmt.Errorf("admin: %w", err)
	}
	firstAirline, err := types.ParseAddress(c.FirstAirline)
	if err != nil {
		return nil, fmt.Errorf("first airline: %w", err)
	}
	app, err := types.ParseAddress(c.App)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	authorized := make([]types.Address, 0, len(c.Authorize))
	for _, s := range c.Authorize {
		addr, err := types.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("authorized caller: %w", err)
		}
		authorized = append(authorized, addr)
	}
	g := node.NewGenesis(admin, firstAirline, app, authorized...)
	g.MinimumStake = c.MinimumStake
	return g, nil
}

func (c *genesisConfig) outputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return c.Base.HomeDir
}

func writeStateFile(path string, serialize func(w io.Writer, committed bool) error) (rErr error) {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("creating state file: %w", err)
	}
	defer func() { rErr = errors.Join(rErr, f.Close()) }()

	if err := serialize(f, true); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}
