package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" {
				return errors.New("--username is required")
			}
			secret := password
			if secret == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprint(cmd.OutOrStdout(), "\n")
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				secret = string(bytes)
			}

			client, _, err := opts.session(false)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			user, err := client.Login(ctx, username, secret)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if api := strings.TrimSpace(opts.api); api != "" {
				cfg.APIBaseURL = api
			}
			cfg.AccessToken = user.Token
			cfg.Username = user.Username
			if err := saveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "login successful")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newCiTokenCmd(opts *globalOptions) *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "ci-token",
		Short: "Mint a token a CI pipeline can use to start jobs for one task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(taskID) == "" {
				return errors.New("--task is required")
			}
			client, token, err := opts.session(true)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ciToken, err := client.GenerateCiToken(ctx, token, taskID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ciToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "task identifier")
	return cmd
}
