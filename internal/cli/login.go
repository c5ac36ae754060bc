package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentkit/studio/internal/auth"
)

func NewCmdLogin() *cobra.Command {
	o := DefaultGlobalOptions()
	var token, refresh string
	cmd := &cobra.Command{
		Use:   "login --token TOKEN",
		Short: "Store an access token in the session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				if token == "" {
					return errors.New("--token is required")
				}
				if err := o.session.SetTokens(ctx, token, refresh); err != nil {
					return err
				}
				_, err := fmt.Fprintln(o.out, "Logged in.")
				return err
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVar(&token, "token", "", "Access token")
	cmd.Flags().StringVar(&refresh, "refresh-token", "", "Refresh token")
	return cmd
}

func NewCmdLogout() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored tokens.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				return o.session.ClearTokens(ctx)
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

// NewCmdToken issues an HMAC token accepted by a kitd started with the
// same JWT_SECRET.
func NewCmdToken() *cobra.Command {
	o := DefaultGlobalOptions()
	var userID, email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token --user ID",
		Short: "Issue a local gateway token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(context.Context) error {
				if userID == "" {
					return errors.New("--user is required")
				}
				token, err := auth.IssueLegacyToken(userID, email, o.cfg.JWT.Secret, ttl)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(o.out, token)
				return err
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVar(&userID, "user", "", "User id")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
