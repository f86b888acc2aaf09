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
	"gopkg.in/yaml.v3"
)

// NewWorkflowTemplatesCommand creates the workflow templates command group.
func NewWorkflowTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "workflow-templates"},
		Short:   "Manage workflow templates",
		Long:    "List, create, update, delete, and instantiate workflow templates",
	}

	cmd.AddCommand(newTemplatesListCommand())
	cmd.AddCommand(newTemplatesGetCommand())
	cmd.AddCommand(newTemplatesCreateCommand())
	cmd.AddCommand(newTemplatesUpdateCommand())
	cmd.AddCommand(newTemplatesDeleteCommand())
	cmd.AddCommand(newTemplatesInstantiateCommand())
	cmd.AddCommand(newTemplatesInstantiateInlineCommand())

	return cmd
}

func newTemplatesListCommand() *cobra.Command {
	var (
		allPages      bool
		pageSize      int
		filter        string
		labelSelector string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflow templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := buildListParams(pageSize, filter, labelSelector)

			var (
				templates     []strata.WorkflowTemplate
				nextPageToken string
			)

			if allPages {
				templates, err = client.WorkflowTemplates().ListAll(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list workflow templates: %w", err)
				}
			} else {
				page, err := client.WorkflowTemplates().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list workflow templates: %w", err)
				}

				templates = page.Items
				nextPageToken = page.NextPageToken
			}

			return outputTemplates(templates, nextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.StandardPageSize, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "server-side filter expression")
	cmd.Flags().StringVar(&labelSelector, "label-selector", "", "label selector (key=value,...)")

	return cmd
}

func outputTemplates(templates []strata.WorkflowTemplate, nextPageToken string) error {
	if format, ok := isStructuredOutput(); ok {
		return renderEncoded(templates, format)
	}

	if len(templates) == 0 {
		_, _ = os.Stdout.WriteString("No workflow templates found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Version", "Steps", "Updated")

	for _, template := range templates {
		_ = table.Append(template.ID, fmt.Sprintf("%d", template.Version),
			fmt.Sprintf("%d", len(template.Jobs)), formatTime(template.UpdateTime))
	}

	_ = table.Render()

	if nextPageToken != "" {
		_, _ = os.Stdout.WriteString("\nMore results available. Use --all to fetch all pages.\n")
	}

	return nil
}

func newTemplatesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TEMPLATE_ID",
		Short: "Get workflow template details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			template, err := client.WorkflowTemplates().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get workflow template: %w", err)
			}

			if format, ok := isStructuredOutput(); ok {
				return renderEncoded(template, format)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")

			_ = table.Append("ID", template.ID)
			_ = table.Append("UUID", template.UUID)
			_ = table.Append("Version", fmt.Sprintf("%d", template.Version))
			_ = table.Append("Created", formatTime(template.CreateTime))
			_ = table.Append("Updated", formatTime(template.UpdateTime))

			steps := make([]string, 0, len(template.Jobs))
			for _, job := range template.Jobs {
				steps = append(steps, fmt.Sprintf("%s (%s)", job.StepID, job.Type))
			}

			_ = table.Append("Steps", formatValue(strings.Join(steps, "\n")))

			if len(template.Parameters) > 0 {
				names := make([]string, 0, len(template.Parameters))
				for _, param := range template.Parameters {
					names = append(names, param.Name)
				}

				_ = table.Append("Parameters", strings.Join(names, ", "))
			}

			_ = table.Render()

			return nil
		},
	}
}

// loadTemplateFile reads a workflow template definition from a YAML or JSON file.
func loadTemplateFile(path string) (*strata.WorkflowTemplateCreateRequest, error) {
	if path == "" {
		return nil, ErrTemplateFileRequired
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var request strata.WorkflowTemplateCreateRequest
	if err := yaml.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("failed to parse template file: %w", err)
	}

	return &request, nil
}

func newTemplatesCreateCommand() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workflow template",
		Long:  "Create a workflow template from a YAML or JSON definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := loadTemplateFile(fromFile)
			if err != nil {
				return err
			}

			if request.ID == "" {
				return ErrTemplateIDRequired
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			template, err := client.WorkflowTemplates().Create(ctx, request)
			if err != nil {
				return fmt.Errorf("failed to create workflow template: %w", err)
			}

			fmt.Printf("Created workflow template '%s' (version %d)\n", template.ID, template.Version)

			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "template definition file (required)")
	_ = cmd.MarkFlagRequired("from-file")

	return cmd
}

func newTemplatesUpdateCommand() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "update TEMPLATE_ID",
		Short: "Update a workflow template",
		Long:  "Replace a workflow template definition. The file's version must match the current template version.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromFile == "" {
				return ErrTemplateFileRequired
			}

			data, err := os.ReadFile(fromFile) // #nosec G304 -- path supplied by the operator
			if err != nil {
				return fmt.Errorf("failed to read template file: %w", err)
			}

			var request strata.WorkflowTemplateUpdateRequest
			if err := yaml.Unmarshal(data, &request); err != nil {
				return fmt.Errorf("failed to parse template file: %w", err)
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			template, err := client.WorkflowTemplates().Update(ctx, args[0], &request)
			if err != nil {
				return fmt.Errorf("failed to update workflow template: %w", err)
			}

			fmt.Printf("Updated workflow template '%s' (version %d)\n", template.ID, template.Version)

			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "template definition file (required)")
	_ = cmd.MarkFlagRequired("from-file")

	return cmd
}

func newTemplatesDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete TEMPLATE_ID",
		Short: "Delete a workflow template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if !force {
				fmt.Printf("Really delete workflow template '%s'? (y/N): ", id)

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

			if err := client.WorkflowTemplates().Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete workflow template: %w", err)
			}

			fmt.Printf("Deleted workflow template '%s'\n", id)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}

func newTemplatesInstantiateCommand() *cobra.Command {
	var (
		version    int
		requestID  string
		paramPairs []string
		wait       bool
	)

	cmd := &cobra.Command{
		Use:   "instantiate TEMPLATE_ID",
		Short: "Instantiate a workflow template",
		Long:  "Start a workflow from a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			parameters, err := parseLabels(paramPairs)
			if err != nil {
				return err
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			operation, err := client.WorkflowTemplates().Instantiate(ctx, id, &strata.InstantiateRequest{
				Version:    version,
				RequestID:  requestID,
				Parameters: parameters,
			})
			if err != nil {
				return fmt.Errorf("failed to instantiate workflow template: %w", err)
			}

			if wait {
				return waitForOperation(ctx, client, operation.Name,
					fmt.Sprintf("Workflow from template '%s' completed", id))
			}

			reportOperation(operation, fmt.Sprintf("Instantiating workflow template '%s'", id))

			return nil
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "template version to instantiate (0 uses the latest)")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency token for the instantiation")
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "template parameter (key=value, repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the workflow to complete")

	return cmd
}

func newTemplatesInstantiateInlineCommand() *cobra.Command {
	var (
		fromFile  string
		requestID string
		wait      bool
	)

	cmd := &cobra.Command{
		Use:   "instantiate-inline",
		Short: "Instantiate an inline workflow template",
		Long:  "Start a workflow from a template definition file without storing the template",
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := loadTemplateFile(fromFile)
			if err != nil {
				return err
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			operation, err := client.WorkflowTemplates().InstantiateInline(ctx, &strata.InstantiateInlineRequest{
				Template:  template,
				RequestID: requestID,
			})
			if err != nil {
				return fmt.Errorf("failed to instantiate inline workflow: %w", err)
			}

			if wait {
				return waitForOperation(ctx, client, operation.Name, "Inline workflow completed")
			}

			reportOperation(operation, "Instantiating inline workflow")

			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "template definition file (required)")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency token for the instantiation")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the workflow to complete")
	_ = cmd.MarkFlagRequired("from-file")

	return cmd
}
