package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scholar/internal/logging"
	serverhttp "scholar/internal/server/http"
	"scholar/internal/store"
	"scholar/internal/textextract"
)

func newServeCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer cli.shutdown()
			cfg := cli.cfg

			st, err := store.New(cfg.Store.Dir,
				store.WithCacheSize(cfg.Store.CacheSize),
				store.WithLogger(logging.NewComponentLogger("store")),
			)
			if err != nil {
				return err
			}

			srv, err := serverhttp.New(serverhttp.Deps{
				Generator:  cli.gen,
				Factory:    serverhttp.NewFactory(cfg.LLM, cli.obs),
				Store:      st,
				Extractor:  textextract.New(cfg.Server.FetchTimeout, cfg.Server.MaxUploadBytes, logging.NewComponentLogger("extract")),
				Obs:        cli.obs,
				Review:     cfg.Review,
				Server:     cfg.Server,
				Logger:     logging.NewComponentLogger("http"),
				ModelLabel: modelLabel(cfg.LLM.Provider, cfg.LLM.Model),
			})
			if err != nil {
				return err
			}

			source := "defaults"
			if p := cli.meta.Path(); p != "" {
				source = p
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s on %s (provider %s, config %s)\n",
				bold("scholar "+appVersion()), cyan(cfg.Server.Addr), cfg.LLM.Provider, source)
			return srv.Run(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.String("addr", "", "Listen address, e.g. :8080")
	flags.String("store-dir", "", "Directory for evaluation and feedback logs")
	cli.bind(flags, map[string]string{
		"server.addr": "addr",
		"store.dir":   "store-dir",
	})
	return cmd
}

func modelLabel(provider, model string) string {
	if model == "" {
		return provider
	}
	return provider + "/" + model
}
