package main

import (
	"context"
	"log"
	"os"

	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "autotrader",
		Usage:   "Indicator driven crypto trading loop",
		Version: version.GetVersion(),
		Writer:  os.Stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path of the YAML config `FILE`",
				Value:   config.DefaultPath,
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv `FILE` loaded before the config",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			onceCommand(),
			fetchCommand(),
			schemaCommand(),
			providersCommand(),
			configCommand(),
			versionCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
