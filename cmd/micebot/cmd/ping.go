package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Authenticate and check the session heartbeat",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return ping(cmd.Context(), newClient(cfg, logger), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

// sessionChecker is the part of the API client ping needs.
type sessionChecker interface {
	Authenticate(ctx context.Context) (bool, error)
	Heartbeat(ctx context.Context) bool
}

func ping(ctx context.Context, client sessionChecker, out io.Writer) error {
	authenticated, err := client.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if !authenticated {
		return errors.New("authentication rejected")
	}

	if !client.Heartbeat(ctx) {
		return errors.New("heartbeat rejected the new session")
	}

	fmt.Fprintln(out, "authenticated, session is valid")
	return nil
}
