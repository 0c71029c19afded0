package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

const defaultTickSeconds = 10

func newTicksCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticks",
		Short: "Print a job's telemetry in fixed-width time buckets",
	}
	cmd.AddCommand(newSocketTicksCmd(opts), newUsageTicksCmd(opts))
	return cmd
}

type tickFlags struct {
	jobID       string
	tickSeconds int
}

func (f *tickFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.jobID, "job", "", "job identifier")
	cmd.Flags().IntVar(&f.tickSeconds, "tick", defaultTickSeconds, "bucket width in seconds")
}

func (f *tickFlags) validate() error {
	if strings.TrimSpace(f.jobID) == "" {
		return errors.New("--job is required")
	}
	if f.tickSeconds <= 0 {
		return errors.New("--tick must be positive")
	}
	return nil
}

func newSocketTicksCmd(opts *globalOptions) *cobra.Command {
	flags := &tickFlags{}
	cmd := &cobra.Command{
		Use:   "sockets",
		Short: "Connected sockets per bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			client, token, err := opts.session(true)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ticks, err := client.SocketTicks(ctx, token, flags.jobID, flags.tickSeconds)
			if err != nil {
				return err
			}
			renderSocketTicks(cmd.OutOrStdout(), ticks)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newUsageTicksCmd(opts *globalOptions) *cobra.Command {
	flags := &tickFlags{}
	cmd := &cobra.Command{
		Use:   "usages",
		Short: "CPU and memory usage per bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			client, token, err := opts.session(true)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ticks, err := client.UsageTicks(ctx, token, flags.jobID, flags.tickSeconds)
			if err != nil {
				return err
			}
			renderUsageTicks(cmd.OutOrStdout(), ticks)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}
