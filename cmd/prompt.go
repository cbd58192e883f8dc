package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeapply.dev/pkg/codeapply/internal/domain"
	m "codeapply.dev/pkg/codeapply/internal/model"
)

var promptTargetFlag string
var promptThresholdFlag float64
var promptForceFlag bool
var promptDryRunFlag bool

// promptCmd represents the prompt command.
var promptCmd = newPromptCmd()

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt [input-file]",
		Short: "Apply code blocks from prompt output",
		Long:  promptLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readPromptInput(cmd, args)
			if err != nil {
				return err
			}

			verbose := viper.GetBool(logVerboseKey)
			threshold := viper.GetFloat64(thresholdConfigKey)
			force := viper.GetBool(forceConfigKey)

			if verbose {
				cmd.Printf("Applying code from prompt to %s\n", promptTargetFlag)
				cmd.Printf("Similarity threshold: %v\n", threshold)

				if force {
					cmd.Println("Force mode enabled - will replace regardless of similarity")
				}

				if promptDryRunFlag {
					cmd.Println("Dry run mode - no changes will be made")
				}
			}

			err = workflow.Prompt(context.Background(), domain.PromptArgs{
				Content:   content,
				Target:    m.Path(promptTargetFlag),
				Threshold: threshold,
				Force:     force,
				DryRun:    promptDryRunFlag,
				Verbose:   verbose,
				Exclude:   viper.GetStringSlice(excludeConfigKey),
				Reports:   m.Path(viper.GetString(outputFlagName)),
				NoReport:  viper.GetBool(noReportFlagName),
			})
			if err != nil {
				return err
			}

			cmd.Println("Code application completed successfully!")

			return nil
		},
	}

	configurePromptFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func configurePromptFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&promptTargetFlag, targetFlagName, "t", "", "target directory to apply the code to")
	cobra.CheckErr(cmd.MarkFlagRequired(targetFlagName))

	cmd.Flags().Float64Var(&promptThresholdFlag, thresholdFlagName, viper.GetFloat64(thresholdConfigKey), "similarity threshold for file matching (0.0 to 1.0)")
	bindFlagToConfig(cmd.Flags().Lookup(thresholdFlagName), thresholdConfigKey)

	cmd.Flags().BoolVarP(&promptForceFlag, forceFlagName, "f", viper.GetBool(forceConfigKey), "force replacement regardless of similarity")
	bindFlagToConfig(cmd.Flags().Lookup(forceFlagName), forceConfigKey)

	cmd.Flags().BoolVar(&promptDryRunFlag, dryRunFlagName, false, "show what would be done without making changes")
}

// readPromptInput returns the prompt output to parse, from the file argument
// when given and from stdin otherwise.
func readPromptInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read input file %s: %w", args[0], err)
		}

		return string(content), nil
	}

	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}

	return string(content), nil
}
