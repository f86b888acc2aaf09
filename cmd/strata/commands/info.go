package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display API endpoint information",
		Long:  "Display information about the Strata API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			info, err := client.GetInfo(ctx)
			if err != nil {
				return fmt.Errorf("failed to get API info: %w", err)
			}

			if format, ok := isStructuredOutput(); ok {
				return renderEncoded(info, format)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")

			_ = table.Append("Name", info.Name)
			_ = table.Append("Build", info.Build)
			_ = table.Append("Version", fmt.Sprintf("%d", info.Version))
			_ = table.Append("Description", formatValue(info.Description))

			if len(info.Custom) > 0 {
				var customStrings []string
				for key, value := range info.Custom {
					customStrings = append(customStrings, fmt.Sprintf("%s: %v", key, value))
				}

				_ = table.Append("Custom", strings.Join(customStrings, "\n"))
			}

			_ = table.Render()

			return nil
		},
	}
}
