package main

import (
	"context"
	"fmt"

	"github.com/samvad-hq/samvad-request-client/internal/app"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{Use: "token", Short: "Manage the stored auth token"}

	setCmd := &cobra.Command{
		Use:   "set TOKEN",
		Short: "Store a token for the configured API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(_ context.Context, rt *app.Runtime) error {
				return rt.Tokens().Set(args[0])
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored token, redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), func(_ context.Context, rt *app.Runtime) error {
				tok, err := rt.Tokens().Get()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), redactToken(tok))
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), func(_ context.Context, rt *app.Runtime) error {
				return rt.Tokens().Clear()
			})
		},
	}

	tokenCmd.AddCommand(setCmd, showCmd, clearCmd)
	return tokenCmd
}

// redactToken keeps the first and last four characters of long tokens.
func redactToken(tok string) string {
	switch {
	case tok == "":
		return "(none)"
	case len(tok) <= 8:
		return "****"
	default:
		return tok[:4] + "..." + tok[len(tok)-4:]
	}
}
