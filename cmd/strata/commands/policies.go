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

// NewAutoscalingPoliciesCommand creates the autoscaling policies command group.
func NewAutoscalingPoliciesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "autoscaling-policies",
		Aliases: []string{"autoscaling-policy", "policies"},
		Short:   "Manage autoscaling policies",
		Long:    "List, create, update, and delete cluster autoscaling policies",
	}

	cmd.AddCommand(newPoliciesListCommand())
	cmd.AddCommand(newPoliciesGetCommand())
	cmd.AddCommand(newPoliciesCreateCommand())
	cmd.AddCommand(newPoliciesUpdateCommand())
	cmd.AddCommand(newPoliciesDeleteCommand())

	return cmd
}

func newPoliciesListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int
		filter   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List autoscaling policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := buildListParams(pageSize, filter, "")

			var (
				policies      []strata.AutoscalingPolicy
				nextPageToken string
			)

			if allPages {
				policies, err = client.AutoscalingPolicies().ListAll(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list autoscaling policies: %w", err)
				}
			} else {
				page, err := client.AutoscalingPolicies().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list autoscaling policies: %w", err)
				}

				policies = page.Items
				nextPageToken = page.NextPageToken
			}

			return outputPolicies(policies, nextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.StandardPageSize, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "server-side filter expression")

	return cmd
}

func outputPolicies(policies []strata.AutoscalingPolicy, nextPageToken string) error {
	if format, ok := isStructuredOutput(); ok {
		return renderEncoded(policies, format)
	}

	if len(policies) == 0 {
		_, _ = os.Stdout.WriteString("No autoscaling policies found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Workers", "Updated")

	for _, policy := range policies {
		_ = table.Append(policy.ID, formatInstanceLimits(policy.WorkerConfig),
			formatTime(policy.UpdateTime))
	}

	_ = table.Render()

	if nextPageToken != "" {
		_, _ = os.Stdout.WriteString("\nMore results available. Use --all to fetch all pages.\n")
	}

	return nil
}

func formatInstanceLimits(limits *strata.InstanceGroupLimits) string {
	if limits == nil {
		return constants.NotAvailable
	}

	return fmt.Sprintf("%d-%d", limits.MinInstances, limits.MaxInstances)
}

func newPoliciesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get POLICY_ID",
		Short: "Get autoscaling policy details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			policy, err := client.AutoscalingPolicies().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get autoscaling policy: %w", err)
			}

			if format, ok := isStructuredOutput(); ok {
				return renderEncoded(policy, format)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")

			_ = table.Append("ID", policy.ID)
			_ = table.Append("UUID", policy.UUID)
			_ = table.Append("Workers", formatInstanceLimits(policy.WorkerConfig))
			_ = table.Append("Secondary Workers", formatInstanceLimits(policy.SecondaryConfig))

			if policy.BasicAlgorithm != nil {
				_ = table.Append("Cooldown", policy.BasicAlgorithm.CooldownPeriod)
				_ = table.Append("Scale Up Factor", fmt.Sprintf("%g", policy.BasicAlgorithm.ScaleUpFactor))
				_ = table.Append("Scale Down Factor", fmt.Sprintf("%g", policy.BasicAlgorithm.ScaleDownFactor))
			}

			_ = table.Append("Created", formatTime(policy.CreateTime))
			_ = table.Append("Updated", formatTime(policy.UpdateTime))

			_ = table.Render()

			return nil
		},
	}
}

func policyFlags(cmd *cobra.Command, minWorkers, maxWorkers *int, cooldown *string, scaleUp, scaleDown *float64) {
	cmd.Flags().IntVar(minWorkers, "min-workers", 0, "minimum worker instances")
	cmd.Flags().IntVar(maxWorkers, "max-workers", 0, "maximum worker instances")
	cmd.Flags().StringVar(cooldown, "cooldown", "120s", "cooldown period between scaling events")
	cmd.Flags().Float64Var(scaleUp, "scale-up-factor", 1.0, "aggressiveness of scale-up (0-1]")
	cmd.Flags().Float64Var(scaleDown, "scale-down-factor", 1.0, "aggressiveness of scale-down (0-1]")
}

func newPoliciesCreateCommand() *cobra.Command {
	var (
		minWorkers int
		maxWorkers int
		cooldown   string
		scaleUp    float64
		scaleDown  float64
	)

	cmd := &cobra.Command{
		Use:   "create POLICY_ID",
		Short: "Create an autoscaling policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if id == "" {
				return ErrPolicyIDRequired
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			policy, err := client.AutoscalingPolicies().Create(ctx, &strata.AutoscalingPolicyCreateRequest{
				ID: id,
				WorkerConfig: &strata.InstanceGroupLimits{
					MinInstances: minWorkers,
					MaxInstances: maxWorkers,
				},
				BasicAlgorithm: &strata.BasicAutoscaling{
					CooldownPeriod:  cooldown,
					ScaleUpFactor:   scaleUp,
					ScaleDownFactor: scaleDown,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to create autoscaling policy: %w", err)
			}

			fmt.Printf("Created autoscaling policy '%s'\n", policy.ID)

			return nil
		},
	}

	policyFlags(cmd, &minWorkers, &maxWorkers, &cooldown, &scaleUp, &scaleDown)
	_ = cmd.MarkFlagRequired("max-workers")

	return cmd
}

func newPoliciesUpdateCommand() *cobra.Command {
	var (
		minWorkers int
		maxWorkers int
		cooldown   string
		scaleUp    float64
		scaleDown  float64
	)

	cmd := &cobra.Command{
		Use:   "update POLICY_ID",
		Short: "Update an autoscaling policy",
		Long:  "Replace an autoscaling policy definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			policy, err := client.AutoscalingPolicies().Update(ctx, args[0], &strata.AutoscalingPolicyUpdateRequest{
				WorkerConfig: &strata.InstanceGroupLimits{
					MinInstances: minWorkers,
					MaxInstances: maxWorkers,
				},
				BasicAlgorithm: &strata.BasicAutoscaling{
					CooldownPeriod:  cooldown,
					ScaleUpFactor:   scaleUp,
					ScaleDownFactor: scaleDown,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to update autoscaling policy: %w", err)
			}

			fmt.Printf("Updated autoscaling policy '%s'\n", policy.ID)

			return nil
		},
	}

	policyFlags(cmd, &minWorkers, &maxWorkers, &cooldown, &scaleUp, &scaleDown)
	_ = cmd.MarkFlagRequired("max-workers")

	return cmd
}

func newPoliciesDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete POLICY_ID",
		Short: "Delete an autoscaling policy",
		Long:  "Delete an autoscaling policy. Policies attached to a cluster cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if !force {
				fmt.Printf("Really delete autoscaling policy '%s'? (y/N): ", id)

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

			if err := client.AutoscalingPolicies().Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete autoscaling policy: %w", err)
			}

			fmt.Printf("Deleted autoscaling policy '%s'\n", id)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}
