package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tax calculation HTTP API and static UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(env.Engine, env.Store, server.Options{
			Port:           port,
			PublicDir:      cfg.Data.PublicDir,
			InputCSVPath:   cfg.Data.InputCSVPath,
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		})

		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
