package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	golog "github.com/ipfs/go-log/v2"
	"github.com/layer-3/clearsync/pkg/debounce"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/snehendu098/ghost/pkg/config"
	"github.com/snehendu098/ghost/pkg/database"
	"github.com/snehendu098/ghost/pkg/journal"
	"github.com/snehendu098/ghost/pkg/keystore"
	"github.com/snehendu098/ghost/pkg/listener"
	"github.com/snehendu098/ghost/pkg/log"
	"github.com/snehendu098/ghost/pkg/rpc"
	"github.com/snehendu098/ghost/pkg/tx"
	"github.com/snehendu098/ghost/pkg/wallet"
)

const queryTimeout = 30 * time.Second

var queryLogger = golog.Logger("ghost-query")

var (
	errNoWallet        = fmt.Errorf("no wallet in the keystore, create one with `ghost wallet new`")
	errAmbiguousWallet = fmt.Errorf("several wallets in the keystore, pick one with --from")
	errJournalDisabled = fmt.Errorf("the execution journal is disabled")
)

type globalFlags struct {
	configDir  string
	network    string
	rpcURL     string
	wsURL      string
	from       string
	gasBudget  uint64
	gasPayment string
	logBackend string
}

// app holds everything a command needs. It is set up once per process by setup.
type app struct {
	flags globalFlags

	cfg      *config.Config
	networks config.Networks
	network  config.Network
	logger   log.Logger

	db      *gorm.DB
	client  *rpc.Client
	store   keystore.Store
	journal *journal.Journal
}

func (a *app) registerFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "Configuration directory (default $"+config.ConfigDirEnv+" or the user config dir)")
	pf.StringVarP(&a.flags.network, "network", "n", "", "Network name, overrides GHOST_NETWORK")
	pf.StringVar(&a.flags.rpcURL, "rpc-url", "", "JSON-RPC endpoint, overrides the network preset")
	pf.StringVar(&a.flags.wsURL, "ws-url", "", "WebSocket endpoint, overrides the network preset")
	pf.StringVarP(&a.flags.from, "from", "f", "", "Address of the signing wallet")
	pf.Uint64Var(&a.flags.gasBudget, "gas-budget", 0, "Gas budget, overrides GHOST_GAS_BUDGET")
	pf.StringVar(&a.flags.gasPayment, "gas", "", "Coin object paying for gas, default is the first owned SUI coin")
	pf.StringVar(&a.flags.logBackend, "log-backend", "ipfs", "Logger backend: ipfs or zap")
}

func (a *app) configDir() (string, error) {
	if a.flags.configDir != "" {
		return a.flags.configDir, nil
	}
	if dir := os.Getenv(config.ConfigDirEnv); dir != "" {
		return dir, nil
	}
	userConfDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(userConfDir, "ghost"), nil
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	dir, err := a.configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.applyFlags(cfg)

	networks, err := config.LoadNetworks(dir)
	if err != nil {
		return err
	}
	network, err := cfg.ResolveNetwork(networks)
	if err != nil {
		return err
	}

	switch a.flags.logBackend {
	case "zap":
		a.logger = log.NewZapLogger(cfg.Log)
	case "ipfs", "":
		log.SetupIPFS(cfg.Log)
		a.logger = log.NewIPFSLogger("ghost", cfg.Log.Level)
	default:
		return fmt.Errorf("unknown log backend %q", a.flags.logBackend)
	}
	ctx := log.SetContextLogger(commandContext(cmd), a.logger.WithKV("network", network.Name))
	cmd.SetContext(ctx)

	if cfg.KeystoreBackend == config.KeystoreBackendDB || cfg.Journal {
		a.db, err = database.Connect(ctx, cfg.Database, &keystore.KeyRecord{}, &journal.ExecutionRecord{})
		if err != nil {
			return err
		}
	}

	switch cfg.KeystoreBackend {
	case config.KeystoreBackendDB:
		a.store = keystore.NewDBStore(a.db)
	default:
		fs, err := keystore.OpenFileStore(cfg.KeystorePath)
		if err != nil {
			return err
		}
		a.store = fs
	}

	if cfg.Journal {
		a.journal = journal.New(a.db)
	}

	var opts []rpc.Option
	if cfg.RateLimit > 0 {
		opts = append(opts, rpc.WithRateLimit(cfg.RateLimit))
	}
	a.client = rpc.NewClient(network.RPCURL, opts...)

	a.cfg, a.networks, a.network = cfg, networks, network
	a.logger.Debug("ready", "config_dir", dir, "rpc", network.RPCURL, "keystore", cfg.KeystoreBackend)
	return nil
}

func (a *app) applyFlags(cfg *config.Config) {
	if a.flags.network != "" {
		cfg.Network = a.flags.network
	}
	if a.flags.rpcURL != "" {
		cfg.RPCURL = a.flags.rpcURL
	}
	if a.flags.wsURL != "" {
		cfg.WSURL = a.flags.wsURL
	}
	if a.flags.gasBudget != 0 {
		cfg.GasBudget = a.flags.gasBudget
	}
	if a.flags.gasPayment != "" {
		cfg.GasPayment = a.flags.gasPayment
	}
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	a.db = nil
	return sqlDB.Close()
}

// query runs a read-only call, retrying while the node is unreachable.
func (a *app) query(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var permanent error
	err := debounce.Debounce(ctx, queryLogger, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && !errors.Is(err, rpc.ErrTransport) {
			permanent = err
			return nil
		}
		return err
	})
	if permanent != nil {
		return permanent
	}
	return err
}

// wallet returns the signing identity: --from when given, otherwise the only stored wallet.
func (a *app) wallet(ctx context.Context) (*wallet.Wallet, error) {
	addr := a.flags.from
	if addr == "" {
		addrs, err := a.store.List(ctx)
		if err != nil {
			return nil, err
		}
		switch len(addrs) {
		case 0:
			return nil, errNoWallet
		case 1:
			addr = addrs[0]
		default:
			return nil, errAmbiguousWallet
		}
	}
	return keystore.LoadWallet(ctx, a.store, addr)
}

// address returns args[0] when present, otherwise the signing wallet's address.
func (a *app) address(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	w, err := a.wallet(ctx)
	if err != nil {
		return "", err
	}
	return w.Address(), nil
}

func (a *app) builder(ctx context.Context) (*tx.Builder, error) {
	w, err := a.wallet(ctx)
	if err != nil {
		return nil, err
	}
	return tx.NewBuilder(a.client, w, tx.BuilderConfig{
		GasPayment: a.cfg.GasPayment,
		GasBudget:  a.cfg.GasBudget,
	})
}

func (a *app) submitter() *tx.Submitter {
	if a.journal == nil {
		return tx.NewSubmitter(a.client)
	}
	return tx.NewSubmitter(a.client, tx.WithJournal(a.journal))
}

func (a *app) listener() *listener.Listener {
	return listener.New(a.network.WSURL, listener.DefaultConfig)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
