package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/ws-flare/ws-flare-graphql/pkg/api/client"
)

func newJobCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Start and inspect load test runs",
	}
	cmd.AddCommand(newJobCreateCmd(opts), newJobGetCmd(opts))
	return cmd
}

func newJobCreateCmd(opts *globalOptions) *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a job for a task, or for the task bound to a CI token when --task is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, token, err := opts.session(true)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			var job apiclient.Job
			if strings.TrimSpace(taskID) == "" {
				job, err = client.CreateCiJob(ctx, token)
			} else {
				job, err = client.CreateJob(ctx, token, taskID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job created: %s (task %s)\n", job.ID, job.TaskID)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "task identifier")
	return cmd
}

func newJobGetCmd(opts *globalOptions) *cobra.Command {
	var jobID string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a job's status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(jobID) == "" {
				return errors.New("--job is required")
			}
			client, token, err := opts.session(true)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			job, err := client.GetJob(ctx, token, jobID)
			if err != nil {
				return err
			}
			renderJob(cmd.OutOrStdout(), job)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobID, "job", "", "job identifier")
	return cmd
}
