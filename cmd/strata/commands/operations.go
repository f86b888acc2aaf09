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

// NewOperationsCommand creates the operations command group.
func NewOperationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "operations",
		Aliases: []string{"operation", "ops"},
		Short:   "Track long-running operations",
		Long:    "List, inspect, wait on, and cancel long-running operations",
	}

	cmd.AddCommand(newOperationsListCommand())
	cmd.AddCommand(newOperationsGetCommand())
	cmd.AddCommand(newOperationsCancelCommand())
	cmd.AddCommand(newOperationsWaitCommand())

	return cmd
}

func newOperationsListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int
		filter   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := buildListParams(pageSize, filter, "")

			var (
				operations    []strata.Operation
				nextPageToken string
			)

			if allPages {
				operations, err = client.Operations().ListAll(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list operations: %w", err)
				}
			} else {
				page, err := client.Operations().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list operations: %w", err)
				}

				operations = page.Items
				nextPageToken = page.NextPageToken
			}

			return outputOperations(operations, nextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.StandardPageSize, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "server-side filter expression")

	return cmd
}

func outputOperations(operations []strata.Operation, nextPageToken string) error {
	if format, ok := isStructuredOutput(); ok {
		return renderEncoded(operations, format)
	}

	if len(operations) == 0 {
		_, _ = os.Stdout.WriteString("No operations found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Kind", "Target", "State", "Started")

	for _, operation := range operations {
		_ = table.Append(operation.Name, formatValue(operation.Kind),
			formatValue(operation.Target), operation.State, formatTime(operation.CreateTime))
	}

	_ = table.Render()

	if nextPageToken != "" {
		_, _ = os.Stdout.WriteString("\nMore results available. Use --all to fetch all pages.\n")
	}

	return nil
}

func outputOperationDetail(operation *strata.Operation) error {
	if format, ok := isStructuredOutput(); ok {
		return renderEncoded(operation, format)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Name", operation.Name)
	_ = table.Append("Kind", formatValue(operation.Kind))
	_ = table.Append("Target", formatValue(operation.Target))
	_ = table.Append("State", operation.State)
	_ = table.Append("Done", fmt.Sprintf("%t", operation.Done))
	_ = table.Append("Started", formatTime(operation.CreateTime))
	_ = table.Append("Updated", formatTime(operation.UpdateTime))

	if operation.Error != nil {
		_ = table.Append("Error", fmt.Sprintf("%s: %s", operation.Error.Status, operation.Error.Message))
	}

	for _, warning := range operation.Warnings {
		_ = table.Append("Warning", warning)
	}

	_ = table.Render()

	return nil
}

func newOperationsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get OPERATION_NAME",
		Short: "Get operation details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			operation, err := client.Operations().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get operation: %w", err)
			}

			return outputOperationDetail(operation)
		},
	}
}

func newOperationsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel OPERATION_NAME",
		Short: "Cancel an operation",
		Long:  "Request best-effort cancellation of a running operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			operation, err := client.Operations().Cancel(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to cancel operation: %w", err)
			}

			fmt.Printf("Cancellation requested for operation '%s' (state: %s)\n",
				operation.Name, operation.State)

			return nil
		},
	}
}

func newOperationsWaitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait OPERATION_NAME",
		Short: "Wait for an operation to finish",
		Long:  "Poll an operation until it completes and display the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			operation, err := client.Operations().PollUntilDone(ctx, args[0])
			if err != nil {
				if operation != nil {
					_ = outputOperationDetail(operation)
				}

				return fmt.Errorf("operation did not complete: %w", err)
			}

			return outputOperationDetail(operation)
		},
	}
}
