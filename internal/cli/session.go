package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/torqueline/partsource/pkg/config"
	"github.com/torqueline/partsource/pkg/session"
)

func newSessionCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear the cached marketplace session",
	}
	cmd.AddCommand(newSessionShowCmd(cfgPath))
	cmd.AddCommand(newSessionClearCmd(cfgPath))
	return cmd
}

// sessionStore opens the configured session store without building the
// rest of the pipeline; session commands never trigger a login.
func sessionStore(cmd *cobra.Command, cfgPath string) (session.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return newSessionStore(cmd.Context(), cfg)
}

func newSessionShowCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cached session's expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sessionStore(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if sess == nil {
				fmt.Println("no cached session")
				return nil
			}
			fmt.Printf("acquired: %s\nexpires:  %s (in %s)\ncookies:  %d\n",
				sess.AcquiredAt.Format(time.RFC3339),
				sess.ExpiresAt.Format(time.RFC3339),
				time.Until(sess.ExpiresAt).Round(time.Minute),
				len(sess.Credential.Cookies))
			return nil
		},
	}
}

func newSessionClearCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the cached session, forcing a fresh login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sessionStore(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("session cleared")
			return nil
		},
	}
}
