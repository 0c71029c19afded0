package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apiclient "github.com/ws-flare/ws-flare-graphql/pkg/api/client"
)

const requestTimeout = 30 * time.Second

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	api   string
	token string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "flarectl",
		Short:         "Drive ws-flare load tests from the terminal or a CI pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.api, "api", "", "gateway base URL (default from config, then "+apiclient.DefaultBaseURL+")")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "access token (default from config, or $WSFLARE_TOKEN)")

	root.AddCommand(
		newLoginCmd(opts),
		newCiTokenCmd(opts),
		newJobCmd(opts),
		newTicksCmd(opts),
		newVersionCmd(),
	)
	return root
}

// session resolves the gateway client and token for a command.
func (o *globalOptions) session(requireToken bool) (*apiclient.Client, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	base := strings.TrimSpace(o.api)
	if base == "" {
		base = cfg.APIBaseURL
	}
	token := strings.TrimSpace(o.token)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("WSFLARE_TOKEN"))
	}
	if token == "" {
		token = cfg.AccessToken
	}
	if requireToken && token == "" {
		return nil, "", errors.New("please login first using 'flarectl login'")
	}
	client, err := apiclient.New(base, apiclient.WithTimeout(requestTimeout))
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the flarectl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(buildVersion))
		},
	}
}
