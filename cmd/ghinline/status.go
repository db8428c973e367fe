package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/pkg/app"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the GitHub API quota for the configured token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runParams(cmd)
			params.LogOutput = io.Discard
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			env, err := app.Prepare(ctx, params)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			rl := env.GitHub.RateLimitStatus(ctx)
			if rl == nil {
				return errors.New("unable to fetch rate limit status")
			}
			fmt.Fprint(cmd.OutOrStdout(), formatStatus(rl, env.GitHub.Authenticated()))
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func formatStatus(rl *github.RateLimit, authenticated bool) string {
	auth := "no (set github.token for a higher limit)"
	if authenticated {
		auth = "yes"
	}
	c, s := rl.Resources.Core, rl.Resources.Search
	return fmt.Sprintf("Authenticated: %s\n\nCore:   %d/%d remaining, resets %s (%d%% used)\nSearch: %d/%d remaining, resets %s\n",
		auth,
		c.Remaining, c.Limit, c.ResetTime().UTC().Format("15:04:05 UTC"), c.UsagePercent(),
		s.Remaining, s.Limit, s.ResetTime().UTC().Format("15:04:05 UTC"),
	)
}
