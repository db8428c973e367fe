package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flemzord/ghinline/internal/mcpserver"
	"github.com/flemzord/ghinline/pkg/app"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the GitHub lookups as MCP tools on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// stdout carries the protocol; logs go to stderr.
			params := runParams(cmd)
			params.LogOutput = os.Stderr
			env, err := app.Prepare(ctx, params)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			srv := mcpserver.New(env.Handler, env.GitHub, version, env.Logger)
			return srv.Serve(ctx, os.Stdin, os.Stdout)
		},
	}
	addRunFlags(cmd)
	return cmd
}
