package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flemzord/ghinline/pkg/app"
)

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service <action>",
		Short:     "Install and control ghinline as an OS service",
		Long:      "Actions: " + strings.Join(app.ServiceActions, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: app.ServiceActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := app.ControlService(runParams(cmd), args[0])
			if err != nil {
				return err
			}
			if msg != "" {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}
