package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/loop"
	tradingprovider "github.com/rxtech-lab/argo-autotrader/internal/trading/provider"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/internal/version"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.LoadWithEnvFile(cmd.String("config"), cmd.String("env-file"))
}

// setup loads the config and opens the rotating logger it describes.
func setup(cmd *cli.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.NewLoggerWithOptions(cfg.LoggerOptions())
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the trading loop until interrupted",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = log.Sync() }()

			t, err := buildTrader(cfg, log, nil)
			if err != nil {
				log.Error("Failed to build autotrader", zap.Error(err))

				return err
			}

			defer func() {
				if err := t.Close(); err != nil {
					log.Warn("Failed to close autotrader", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := t.Run(ctx); err != nil {
				return err
			}

			log.Info("Autotrader stopped", zap.Any("ledger", t.ledger.Snapshot()))

			return nil
		},
	}
}

// onceReport is what the once command prints.
type onceReport struct {
	Outcome  loop.Outcome                           `json:"outcome"`
	Signal   types.Signal                           `json:"signal"`
	Bars     int                                    `json:"bars"`
	Enriched int                                    `json:"enriched"`
	Price    float64                                `json:"price,omitempty"`
	Quantity float64                                `json:"quantity,omitempty"`
	Record   optional.Option[types.ExecutionRecord] `json:"record"`
	Ledger   types.LedgerSnapshot                   `json:"ledger"`
}

func onceCommand() *cli.Command {
	return &cli.Command{
		Name:  "once",
		Usage: "Run a single iteration and print its result",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = log.Sync() }()

			t, err := buildTrader(cfg, log, loop.NewManualScheduler(0))
			if err != nil {
				return err
			}
			defer t.Close()

			report, err := runOnce(ctx, t)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.Root().Writer)
			encoder.SetIndent("", "  ")

			return encoder.Encode(report)
		},
	}
}

func runOnce(ctx context.Context, t *trader) (onceReport, error) {
	result, err := t.loop.RunOnce(ctx)
	if err != nil {
		return onceReport{}, err
	}

	return onceReport{
		Outcome:  result.Outcome,
		Signal:   result.Signal,
		Bars:     result.Bars,
		Enriched: result.Enriched,
		Price:    result.Price,
		Quantity: result.Quantity,
		Record:   result.Record,
		Ledger:   t.ledger.Snapshot(),
	}, nil
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print JSON schemas",
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := config.Schema()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, schema)

			return err
		},
		Commands: []*cli.Command{
			{
				Name:      "download",
				Usage:     "Schema of a market data download config",
				ArgsUsage: "PROVIDER",
				Action: func(_ context.Context, cmd *cli.Command) error {
					schema, err := marketdata.GetDownloadConfigSchema(cmd.Args().First())
					if err != nil {
						return err
					}

					_, err = fmt.Fprintln(cmd.Root().Writer, schema)

					return err
				},
			},
			{
				Name:      "trading",
				Usage:     "Schema of a trading provider config",
				ArgsUsage: "PROVIDER",
				Action: func(_ context.Context, cmd *cli.Command) error {
					schema, err := tradingprovider.GetProviderConfigSchema(cmd.Args().First())
					if err != nil {
						return err
					}

					_, err = fmt.Fprintln(cmd.Root().Writer, schema)

					return err
				},
			},
		},
	}
}

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List market data and trading providers",
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "KIND\tNAME\tDESCRIPTION")

			for _, name := range marketdata.GetSupportedProviders() {
				info, err := marketdata.GetProviderInfo(name)
				if err != nil {
					return err
				}

				fmt.Fprintf(w, "data\t%s\t%s\n", info.Name, info.Description)
			}

			for _, name := range tradingprovider.GetSupportedProviders() {
				info, err := tradingprovider.GetProviderInfo(name)
				if err != nil {
					return err
				}

				fmt.Fprintf(w, "trading\t%s\t%s\n", info.Name, info.Description)
			}

			return w.Flush()
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the config file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default config",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					path := cmd.String("config")

					if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
						return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s already exists, use --force to overwrite", path)
					} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
						return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to stat %s", path)
					}

					if err := config.Default().Save(path); err != nil {
						return err
					}

					_, err := fmt.Fprintf(cmd.Root().Writer, "wrote %s\n", path)

					return err
				},
			},
			{
				Name:  "check",
				Usage: "Load and validate the config",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					_, err = fmt.Fprintf(cmd.Root().Writer, "ok: %s %s on %s\n",
						cfg.Trading.Mode, cfg.Trading.Symbol, cfg.Data.Provider)

					return err
				},
			},
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the binary version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

			return err
		},
	}
}
