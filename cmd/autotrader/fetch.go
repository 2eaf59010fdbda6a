package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download historical bars into parquet archives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Symbol to download, defaults to trading.symbol",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Download every symbol in data.pairs",
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format (or RFC3339)",
				Required: true,
				Config:   cli.TimestampConfig{Layouts: dateLayouts},
			},
			&cli.TimestampFlag{
				Name:     "end",
				Usage:    "End date in `YYYY-MM-DD` format (or RFC3339)",
				Required: true,
				Config:   cli.TimestampConfig{Layouts: dateLayouts},
			},
			&cli.StringFlag{
				Name:  "interval",
				Usage: "Bar interval, defaults to data.timeframe",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Market data provider, defaults to data.provider",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory, defaults to data.data_dir",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			req := fetchRequest{
				Symbols:  fetchSymbols(cfg, cmd.String("symbol"), cmd.Bool("all")),
				Start:    cmd.Timestamp("start"),
				End:      cmd.Timestamp("end"),
				Interval: firstNonEmpty(cmd.String("interval"), cfg.Data.Timeframe),
			}

			clientConfig := fetchClientConfig(cfg, cmd.String("provider"), cmd.String("out"))

			paths, err := fetch(ctx, clientConfig, req, os.Stderr)
			if err != nil {
				return err
			}

			for _, path := range paths {
				fmt.Fprintln(cmd.Root().Writer, path)
			}

			return nil
		},
	}
}

type fetchRequest struct {
	Symbols  []string
	Start    time.Time
	End      time.Time
	Interval string
}

func fetchSymbols(cfg *config.Config, symbol string, all bool) []string {
	if all {
		return cfg.Data.Pairs
	}

	if symbol != "" {
		return []string{strings.ToUpper(symbol)}
	}

	return []string{cfg.Trading.Symbol}
}

func fetchClientConfig(cfg *config.Config, providerName, out string) marketdata.ClientConfig {
	return marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(firstNonEmpty(providerName, cfg.Data.Provider)),
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      firstNonEmpty(out, cfg.Data.DataDir),
		PolygonApiKey: cfg.Polygon.APIKey,
		CSVPath:       cfg.Data.CSVPath,
	}
}

// fetch downloads every requested symbol in turn and returns the archive
// paths. Progress is drawn on progressOut.
func fetch(ctx context.Context, clientConfig marketdata.ClientConfig, req fetchRequest, progressOut io.Writer) ([]string, error) {
	timeframe, err := provider.ParseTimeframe(req.Interval)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(req.Symbols))

	for _, symbol := range req.Symbols {
		bar := progressbar.NewOptions64(-1,
			progressbar.OptionSetWriter(progressOut),
			progressbar.OptionSetDescription(symbol),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		client, err := marketdata.NewClient(clientConfig, func(current, total float64, message string) {
			if total > 0 {
				bar.ChangeMax64(int64(total))
			}

			bar.Describe(message)
			_ = bar.Set64(int64(current))
		})
		if err != nil {
			return nil, err
		}

		path, err := client.Download(ctx, marketdata.DownloadParams{
			Ticker:    symbol,
			StartDate: req.Start,
			EndDate:   req.End,
			Timeframe: timeframe,
		})

		_ = bar.Finish()

		if err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
