package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/strata-io/strata-client/internal/constants"
	"github.com/strata-io/strata-client/pkg/strata"
)

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage jobs",
		Long:    "Submit, list, poll, cancel, and delete jobs",
	}

	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsSubmitCommand())
	cmd.AddCommand(newJobsUpdateCommand())
	cmd.AddCommand(newJobsCancelCommand())
	cmd.AddCommand(newJobsDeleteCommand())
	cmd.AddCommand(newJobsPollCommand())

	return cmd
}

func newJobsListCommand() *cobra.Command {
	var (
		allPages      bool
		pageSize      int
		filter        string
		labelSelector string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := buildListParams(pageSize, filter, labelSelector)

			var (
				jobs          []strata.Job
				nextPageToken string
			)

			if allPages {
				jobs, err = client.Jobs().ListAll(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list jobs: %w", err)
				}
			} else {
				page, err := client.Jobs().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list jobs: %w", err)
				}

				jobs = page.Items
				nextPageToken = page.NextPageToken
			}

			return outputJobs(jobs, nextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.StandardPageSize, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "server-side filter expression")
	cmd.Flags().StringVar(&labelSelector, "label-selector", "", "label selector (key=value,...)")

	return cmd
}

func outputJobs(jobs []strata.Job, nextPageToken string) error {
	if format, ok := isStructuredOutput(); ok {
		return renderEncoded(jobs, format)
	}

	if len(jobs) == 0 {
		_, _ = os.Stdout.WriteString("No jobs found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job ID", "Type", "Cluster", "State", "Submitted")

	for _, job := range jobs {
		cluster := constants.NotAvailable
		if job.Placement != nil {
			cluster = job.Placement.ClusterName
		}

		_ = table.Append(job.Reference.JobID, job.Type, cluster, job.Status.State,
			formatTime(job.CreateTime))
	}

	_ = table.Render()

	if nextPageToken != "" {
		_, _ = os.Stdout.WriteString("\nMore results available. Use --all to fetch all pages.\n")
	}

	return nil
}

func outputJobDetail(job *strata.Job) error {
	if format, ok := isStructuredOutput(); ok {
		return renderEncoded(job, format)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Job ID", job.Reference.JobID)
	_ = table.Append("Project", formatValue(job.Reference.ProjectID))
	_ = table.Append("Type", job.Type)

	if job.Placement != nil {
		_ = table.Append("Cluster", job.Placement.ClusterName)
	}

	_ = table.Append("State", job.Status.State)
	_ = table.Append("State Detail", formatValue(job.Status.Detail))
	_ = table.Append("State Time", formatTime(job.Status.StateTime))
	_ = table.Append("Main Class", formatValue(job.MainClass))
	_ = table.Append("Main File", formatValue(job.MainFileURI))
	_ = table.Append("Driver Output", formatValue(job.DriverOutputURI))
	_ = table.Append("Submitted", formatTime(job.CreateTime))

	_ = table.Render()

	return nil
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_ID",
		Short: "Get job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Jobs().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get job: %w", err)
			}

			return outputJobDetail(job)
		},
	}
}

//nolint:funlen
func newJobsSubmitCommand() *cobra.Command {
	var (
		cluster     string
		jobType     string
		mainClass   string
		mainFileURI string
		jobArgs     []string
		labelPairs  []string
		requestID   string
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a job",
		Long:  "Submit a job to a cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := parseLabels(labelPairs)
			if err != nil {
				return err
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job := &strata.Job{
				Placement:   &strata.JobPlacement{ClusterName: cluster},
				Type:        jobType,
				MainClass:   mainClass,
				MainFileURI: mainFileURI,
				Args:        jobArgs,
			}
			job.Labels = labels

			submitted, err := client.Jobs().Submit(ctx, &strata.JobSubmitRequest{
				Job:       job,
				RequestID: requestID,
			})
			if err != nil {
				return fmt.Errorf("failed to submit job: %w", err)
			}

			fmt.Printf("Submitted job '%s' to cluster '%s'\n", submitted.Reference.JobID, cluster)

			if wait {
				completed, err := client.Jobs().PollUntilComplete(ctx, submitted.Reference.JobID)
				if err != nil {
					return fmt.Errorf("job did not complete: %w", err)
				}

				fmt.Printf("Job '%s' finished with state %s\n", completed.Reference.JobID, completed.Status.State)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&cluster, "cluster", "", "cluster to run the job on (required)")
	cmd.Flags().StringVar(&jobType, "type", "", "job type, e.g. spark or query (required)")
	cmd.Flags().StringVar(&mainClass, "main-class", "", "fully qualified main class")
	cmd.Flags().StringVar(&mainFileURI, "main-file", "", "URI of the main job file")
	cmd.Flags().StringArrayVar(&jobArgs, "arg", nil, "argument passed to the job (repeatable)")
	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "label to apply (key=value, repeatable)")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency token for the submission")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the job to reach a terminal state")
	_ = cmd.MarkFlagRequired("cluster")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newJobsUpdateCommand() *cobra.Command {
	var labelPairs []string

	cmd := &cobra.Command{
		Use:   "update JOB_ID",
		Short: "Update a job's labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := parseLabels(labelPairs)
			if err != nil {
				return err
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Jobs().Update(ctx, args[0], &strata.JobUpdateRequest{
				Labels:     labels,
				UpdateMask: []string{"labels"},
			})
			if err != nil {
				return fmt.Errorf("failed to update job: %w", err)
			}

			fmt.Printf("Updated job '%s'\n", job.Reference.JobID)

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "label to apply (key=value, repeatable)")

	return cmd
}

func newJobsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel JOB_ID",
		Short: "Cancel a running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Jobs().Cancel(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to cancel job: %w", err)
			}

			fmt.Printf("Cancellation requested for job '%s' (state: %s)\n",
				job.Reference.JobID, job.Status.State)

			return nil
		},
	}
}

func newJobsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete JOB_ID",
		Short: "Delete a terminal job",
		Long:  "Delete a job record. The job must be in a terminal state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := args[0]

			if !force {
				fmt.Printf("Really delete job '%s'? (y/N): ", jobID)

				var response string

				_, _ = fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Cancelled")

					return nil
				}
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			if err := client.Jobs().Delete(ctx, jobID); err != nil {
				return fmt.Errorf("failed to delete job: %w", err)
			}

			fmt.Printf("Deleted job '%s'\n", jobID)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}

func newJobsPollCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "poll JOB_ID",
		Short: "Wait for a job to finish",
		Long:  "Poll a job until it reaches a terminal state and display the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Jobs().PollUntilComplete(ctx, args[0])
			if err != nil {
				if job != nil && strings.EqualFold(job.Status.State, constants.JobStateError) {
					fmt.Printf("Job '%s' failed: %s\n", job.Reference.JobID, job.Status.Detail)
				}

				return fmt.Errorf("failed to poll job: %w", err)
			}

			return outputJobDetail(job)
		},
	}
}
