package cmd

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ainvaltin/httpsrv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flightsurety/flightsurety/internal/debug"
	"github.com/flightsurety/flightsurety/keyvaluedb"
	"github.com/flightsurety/flightsurety/keyvaluedb/boltdb"
	"github.com/flightsurety/flightsurety/keyvaluedb/sqlitedb"
	"github.com/flightsurety/flightsurety/logger"
	"github.com/flightsurety/flightsurety/node"
	"github.com/flightsurety/flightsurety/observability"
	"github.com/flightsurety/flightsurety/rpc"
	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txbuffer"
	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	"github.com/flightsurety/flightsurety/txsystem/surety"
)

const (
	boltDBFileName   = "flightsurety.db"
	sqliteDBFileName = "flightsurety.sqlite"

	dbBackendBolt   = "bolt"
	dbBackendSQLite = "sqlite"

	defaultRESTServerAddress = "localhost:26866"
	defaultTxBufferSize      = 1000
)

type nodeConfig struct {
	Base *baseConfiguration

	GenesisFile       string
	StateFile         string
	DBFile            string
	DBBackend         string
	RESTServerAddress string
	RESTMaxBodySize   int64
	TxBufferSize      uint
	SubmitTimeout     time.Duration
	MaxTxTimeout      uint64
}

// newNodeCmd creates a new cobra command for running the registry node.
func newNodeCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &nodeConfig{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "node",
		Short: "Starts the airline registry node",
		Long:  `Starts the airline registry node. The node restores the registry from the database, the initial state is loaded when the database is empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.Context(), config)
		},
	}

	cmd.Flags().StringVarP(&config.GenesisFile, "genesis", "g", "", fmt.Sprintf("path to the genesis file (default $FS_HOME/%s)", genesisFileName))
	cmd.Flags().StringVarP(&config.StateFile, "state", "s", "", fmt.Sprintf("path to the initial state file, the state is created from genesis when the file does not exist (default $FS_HOME/%s)", stateFileName))
	cmd.Flags().StringVar(&config.DBFile, "db", "", fmt.Sprintf("path to the database file (default $FS_HOME/%s or $FS_HOME/%s)", boltDBFileName, sqliteDBFileName))
	cmd.Flags().StringVar(&config.DBBackend, "db-backend", dbBackendBolt, "database backend, one of: bolt, sqlite")
	cmd.Flags().StringVar(&config.RESTServerAddress, "rest-server-address", defaultRESTServerAddress, "address the REST server listens on, the server is disabled when empty")
	cmd.Flags().Int64Var(&config.RESTMaxBodySize, "rest-max-body", rpc.MaxBodySize, "maximum size of the REST request body in bytes")
	cmd.Flags().UintVar(&config.TxBufferSize, "tx-buffer-size", defaultTxBufferSize, "maximum number of orders waiting for execution")
	cmd.Flags().DurationVar(&config.SubmitTimeout, "submit-timeout", 4*time.Second, "how long REST request waits for the submitted order to be executed")
	cmd.Flags().Uint64Var(&config.MaxTxTimeout, "max-tx-timeout", txsystem.DefaultMaxTimeout, "how many rounds ahead of the current round the timeout of an order may be")
	return cmd
}

func runNode(ctx context.Context, config *nodeConfig) error {
	obs := config.Base.observe
	log := obs.Logger()

	db, err := config.openDB()
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("closing database", logger.Error(err))
		}
	}()

	n, err := createNode(config, db, obs)
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}

	log.InfoContext(ctx, fmt.Sprintf("starting registry node: BuildInfo=%s", debug.ReadBuildInfo()))
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return n.Run(ctx) })

	g.Go(func() error {
		if config.RESTServerAddress == "" {
			return nil // return nil in this case in order not to kill the group!
		}
		server := rpc.NewRESTServer(config.RESTServerAddress, config.RESTMaxBodySize, obs,
			rpc.MetricsEndpoints(obs.MetricsHandler()),
			rpc.NodeEndpoints(n, obs, rpc.WithSubmitTimeout(config.SubmitTimeout)),
		)
		log.InfoContext(ctx, fmt.Sprintf("REST server starting on %s", server.Addr))
		return httpsrv.Run(ctx, *server, httpsrv.ShutdownTimeout(5*time.Second))
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info("node stopped")
		return nil
	}
	return err
}

func createNode(config *nodeConfig, db keyvaluedb.KeyValueDB, obs observability.Observability) (*node.Node, error) {
	g, err := node.LoadGenesis(config.Base.pathWithDefault(config.GenesisFile, genesisFileName))
	if err != nil {
		return nil, err
	}
	initial, err := config.initialState(g)
	if err != nil {
		return nil, err
	}
	s, err := node.LoadState(db, initial)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	log := obs.Logger().With(logger.NodeID(g.App))
	log.Info("registry state loaded", logger.Round(s.CommittedRound()))
	opts, err := g.TxSystemOptions(s)
	if err != nil {
		return nil, err
	}
	txSystem, err := surety.NewTxSystem(obs, append(opts, surety.WithMaxTimeout(config.MaxTxTimeout))...)
	if err != nil {
		return nil, fmt.Errorf("creating tx system: %w", err)
	}
	buffer, err := txbuffer.New(config.TxBufferSize, crypto.SHA256, obs)
	if err != nil {
		return nil, fmt.Errorf("creating tx buffer: %w", err)
	}
	return node.New(txSystem, buffer, obs, node.WithDB(db))
}

/*
initialState returns the state used when the database is empty: the state file
when it exists, otherwise the state is created from the genesis.
*/
func (c *nodeConfig) initialState(g *node.Genesis) (*state.State, error) {
	stateFile := c.Base.pathWithDefault(c.StateFile, stateFileName)
	f, err := os.Open(filepath.Clean(stateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && c.StateFile == "" {
			return g.State()
		}
		return nil, fmt.Errorf("opening state file: %w", err)
	}
	defer f.Close()

	s, err := state.NewRecoveredState(f, registry.NewUnitData)
	if err != nil {
		return nil, fmt.Errorf("reading state file %s: %w", stateFile, err)
	}
	return s, nil
}

func (c *nodeConfig) openDB() (keyvaluedb.KeyValueDB, error) {
	switch c.DBBackend {
	case dbBackendBolt:
		db, err := boltdb.New(c.Base.pathWithDefault(c.DBFile, boltDBFileName))
		if err != nil {
			return nil, fmt.Errorf("opening bolt db: %w", err)
		}
		return db, nil
	case dbBackendSQLite:
		db, err := sqlitedb.New(c.Base.pathWithDefault(c.DBFile, sqliteDBFileName))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite db: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db backend %q", c.DBBackend)
	}
}
