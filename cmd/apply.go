package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeapply.dev/pkg/codeapply/internal/domain"
	m "codeapply.dev/pkg/codeapply/internal/model"
)

var applyDryRunFlag bool

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply SOURCE TARGET",
		Short: "Copy a file or directory tree verbatim",
		Long: `Mirror SOURCE into TARGET without content matching. A directory source is
copied recursively; a file source lands inside TARGET when TARGET is an
existing directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]

			cmd.Printf("Applying code from %s to %s\n", source, target)

			if applyDryRunFlag {
				cmd.Println("Dry run mode - no changes will be made")
			}

			err := workflow.Copy(context.Background(), domain.CopyArgs{
				Source:   m.Path(source),
				Target:   m.Path(target),
				DryRun:   applyDryRunFlag,
				Verbose:  viper.GetBool(logVerboseKey),
				Reports:  m.Path(viper.GetString(outputFlagName)),
				NoReport: viper.GetBool(noReportFlagName),
			})
			if err != nil {
				return err
			}

			cmd.Println("Code application completed successfully!")

			return nil
		},
	}

	configureApplyFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func configureApplyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&applyDryRunFlag, dryRunFlagName, false, "show what would be done without making changes")
}
