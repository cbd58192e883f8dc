package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeapply.dev/pkg/codeapply/internal/domain"
	m "codeapply.dev/pkg/codeapply/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [report-id]",
		Short: "View a saved run report",
		Long:  "View a saved run report from the reports directory, the most recent one when no ID is given. A unique ID prefix is enough.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}

			reportsPath := m.Path(viper.GetString(outputFlagName))

			return workflow.View(context.Background(), domain.ViewArgs{Reports: reportsPath, ID: id})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
