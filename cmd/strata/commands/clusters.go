package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/strata-io/strata-client/internal/constants"
	"github.com/strata-io/strata-client/pkg/strata"
)

// NewClustersCommand creates the clusters command group.
func NewClustersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clusters",
		Aliases: []string{"cluster"},
		Short:   "Manage compute clusters",
		Long:    "List, create, update, diagnose, and delete Strata compute clusters",
	}

	cmd.AddCommand(newClustersListCommand())
	cmd.AddCommand(newClustersGetCommand())
	cmd.AddCommand(newClustersCreateCommand())
	cmd.AddCommand(newClustersUpdateCommand())
	cmd.AddCommand(newClustersDeleteCommand())
	cmd.AddCommand(newClustersDiagnoseCommand())

	return cmd
}

func newClustersListCommand() *cobra.Command {
	var (
		allPages      bool
		pageSize      int
		filter        string
		labelSelector string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clusters",
		Long:  "List all clusters in the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := buildListParams(pageSize, filter, labelSelector)

			var (
				clusters      []strata.Cluster
				nextPageToken string
			)

			if allPages {
				clusters, err = client.Clusters().ListAll(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list clusters: %w", err)
				}
			} else {
				page, err := client.Clusters().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list clusters: %w", err)
				}

				clusters = page.Items
				nextPageToken = page.NextPageToken
			}

			return outputClusters(clusters, nextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.StandardPageSize, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "server-side filter expression")
	cmd.Flags().StringVar(&labelSelector, "label-selector", "", "label selector (key=value,...)")

	return cmd
}

func outputClusters(clusters []strata.Cluster, nextPageToken string) error {
	if format, ok := isStructuredOutput(); ok {
		return renderEncoded(clusters, format)
	}

	if len(clusters) == 0 {
		_, _ = os.Stdout.WriteString("No clusters found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Region", "State", "Workers", "Created")

	for _, cluster := range clusters {
		workers := constants.NotAvailable
		if cluster.Config != nil && cluster.Config.WorkerConfig != nil {
			workers = fmt.Sprintf("%d", cluster.Config.WorkerConfig.NumInstances)
		}

		_ = table.Append(cluster.Name, cluster.Region, cluster.Status.State, workers,
			cluster.CreateTime.Format("2006-01-02"))
	}

	_ = table.Render()

	if nextPageToken != "" {
		_, _ = os.Stdout.WriteString("\nMore results available. Use --all to fetch all pages.\n")
	}

	return nil
}

func newClustersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CLUSTER_NAME",
		Short: "Get cluster details",
		Long:  "Display detailed information about a specific cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			cluster, err := client.Clusters().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get cluster: %w", err)
			}

			if format, ok := isStructuredOutput(); ok {
				return renderEncoded(cluster, format)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")

			_ = table.Append("Name", cluster.Name)
			_ = table.Append("UUID", cluster.UUID)
			_ = table.Append("Project", formatValue(cluster.ProjectID))
			_ = table.Append("Region", cluster.Region)
			_ = table.Append("State", cluster.Status.State)
			_ = table.Append("State Detail", formatValue(cluster.Status.Detail))
			_ = table.Append("Created", formatTime(cluster.CreateTime))
			_ = table.Append("Updated", formatTime(cluster.UpdateTime))

			if cluster.Config != nil {
				if cluster.Config.WorkerConfig != nil {
					_ = table.Append("Workers", fmt.Sprintf("%d x %s",
						cluster.Config.WorkerConfig.NumInstances,
						formatValue(cluster.Config.WorkerConfig.MachineType)))
				}

				if cluster.Config.SoftwareConfig != nil {
					_ = table.Append("Image Version", cluster.Config.SoftwareConfig.ImageVersion)
				}

				if cluster.Config.AutoscalingID != "" {
					_ = table.Append("Autoscaling Policy", cluster.Config.AutoscalingID)
				}
			}

			_ = table.Render()

			return nil
		},
	}
}

//nolint:funlen
func newClustersCreateCommand() *cobra.Command {
	var (
		region       string
		workers      int
		machineType  string
		imageVersion string
		policyID     string
		labelPairs   []string
		wait         bool
	)

	cmd := &cobra.Command{
		Use:   "create CLUSTER_NAME",
		Short: "Create a cluster",
		Long:  "Create a new compute cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == "" {
				return ErrClusterNameRequired
			}

			labels, err := parseLabels(labelPairs)
			if err != nil {
				return err
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request := &strata.ClusterCreateRequest{
				Name:   name,
				Region: region,
				Labels: labels,
			}

			if workers > 0 || machineType != "" || imageVersion != "" || policyID != "" {
				request.Config = &strata.ClusterConfig{
					AutoscalingID: policyID,
				}

				if workers > 0 || machineType != "" {
					request.Config.WorkerConfig = &strata.InstanceGroupConfig{
						NumInstances: workers,
						MachineType:  machineType,
					}
				}

				if imageVersion != "" {
					request.Config.SoftwareConfig = &strata.SoftwareConfig{
						ImageVersion: imageVersion,
					}
				}
			}

			operation, err := client.Clusters().Create(ctx, request)
			if err != nil {
				return fmt.Errorf("failed to create cluster: %w", err)
			}

			if wait {
				return waitForOperation(ctx, client, operation.Name,
					fmt.Sprintf("Created cluster '%s'", name))
			}

			reportOperation(operation, fmt.Sprintf("Creating cluster '%s'", name))

			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "region to place the cluster in (required)")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of worker instances")
	cmd.Flags().StringVar(&machineType, "machine-type", "", "worker machine type")
	cmd.Flags().StringVar(&imageVersion, "image-version", "", "cluster image version")
	cmd.Flags().StringVar(&policyID, "autoscaling-policy", "", "autoscaling policy ID")
	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "label to apply (key=value, repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the operation to complete")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

func newClustersUpdateCommand() *cobra.Command {
	var (
		workers    int
		labelPairs []string
		wait       bool
	)

	cmd := &cobra.Command{
		Use:   "update CLUSTER_NAME",
		Short: "Update a cluster",
		Long:  "Update a cluster's worker count or labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			labels, err := parseLabels(labelPairs)
			if err != nil {
				return err
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request := &strata.ClusterUpdateRequest{Labels: labels}

			if cmd.Flags().Changed("workers") {
				request.Config = &strata.ClusterConfig{
					WorkerConfig: &strata.InstanceGroupConfig{NumInstances: workers},
				}
				request.UpdateMask = append(request.UpdateMask, "config.worker_config.num_instances")
			}

			if labels != nil {
				request.UpdateMask = append(request.UpdateMask, "labels")
			}

			operation, err := client.Clusters().Update(ctx, name, request)
			if err != nil {
				return fmt.Errorf("failed to update cluster: %w", err)
			}

			if wait {
				return waitForOperation(ctx, client, operation.Name,
					fmt.Sprintf("Updated cluster '%s'", name))
			}

			reportOperation(operation, fmt.Sprintf("Updating cluster '%s'", name))

			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "new number of worker instances")
	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "label to apply (key=value, repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the operation to complete")

	return cmd
}

func newClustersDeleteCommand() *cobra.Command {
	var (
		force bool
		wait  bool
	)

	cmd := &cobra.Command{
		Use:   "delete CLUSTER_NAME",
		Short: "Delete a cluster",
		Long:  "Delete a cluster and release its resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !force {
				fmt.Printf("Really delete cluster '%s'? (y/N): ", name)

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

			operation, err := client.Clusters().Delete(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to delete cluster: %w", err)
			}

			if wait {
				return waitForOperation(ctx, client, operation.Name,
					fmt.Sprintf("Deleted cluster '%s'", name))
			}

			reportOperation(operation, fmt.Sprintf("Deleting cluster '%s'", name))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the operation to complete")

	return cmd
}

func newClustersDiagnoseCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "diagnose CLUSTER_NAME",
		Short: "Diagnose a cluster",
		Long:  "Gather diagnostic information from a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			operation, err := client.Clusters().Diagnose(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to diagnose cluster: %w", err)
			}

			if wait {
				completed, err := client.Operations().PollUntilDone(ctx, operation.Name)
				if err != nil {
					return fmt.Errorf("diagnosis failed: %w", err)
				}

				if uri, ok := completed.Result["output_uri"].(string); ok {
					fmt.Printf("Diagnostic output: %s\n", uri)
				}

				return nil
			}

			reportOperation(operation, fmt.Sprintf("Diagnosing cluster '%s'", name))

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the operation to complete")

	return cmd
}

// waitForOperation polls an operation to completion and prints the outcome.
func waitForOperation(ctx context.Context, client strata.Client, name, successMessage string) error {
	_, err := client.Operations().PollUntilDone(ctx, name)
	if err != nil {
		return fmt.Errorf("operation did not complete: %w", err)
	}

	fmt.Println(successMessage)

	return nil
}
