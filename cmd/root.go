// Package cmd provides the root command and CLI setup for codeapply.
package cmd

import (
	"fmt"
	"os"

	"codeapply.dev/pkg/codeapply/internal/adapter"
	"codeapply.dev/pkg/codeapply/internal/controller"
	"codeapply.dev/pkg/codeapply/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var fsAdapter adapter.TargetFSAdapter
var reportStore adapter.ReportStore
var parser domain.Parser
var matcher domain.Matcher
var applier domain.Applier
var copier domain.Copier
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// noReportFlag disables run report writing when set.
var noReportFlag bool

// excludePatterns is a root-level flag that hides matching files from candidate scans.
var excludePatterns []string

// verboseFlag enables per-file narration and debug logging.
var verboseFlag bool

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))

	cached, err := adapter.NewCachingTargetFS(adapter.NewLocalTargetFS(), adapter.DefaultCacheSize)
	cobra.CheckErr(err)

	fsAdapter = cached
	reportStore = adapter.NewLocalReportStore()
	parser = domain.NewParser()
	matcher = domain.NewMatcher(fsAdapter)
	applier = domain.NewApplier(fsAdapter, matcher)
	copier = domain.NewCopier(fsAdapter)
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		ui,
		parser,
		matcher,
		applier,
		copier,
	)
}

const blockGrammarHelp = `Prompt output is expected to contain blocks of the form:

  ---FILE_PATH: path/to/file.go
  ` + "```go" + `
  file content
  ` + "```" + `
  ---END_FILE

Anything between blocks is ignored.`

const rootLongDescription = `Codeapply takes code blocks from LLM prompt output and applies them to a
project tree. Each block names a file; existing files with the same base
name are compared by content similarity, so a block is applied to the
right file even when its header names a different directory layout.

` + blockGrammarHelp

const promptLongDescription = `Parse code blocks from prompt output (a file argument or stdin) and apply
each one to the target directory.

A block updates the most similar existing file with the same base name
when the similarity reaches the threshold, and otherwise creates a new
file at the block's own path.

` + blockGrammarHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codeapply",
		Short: "Apply code blocks from LLM output to your project",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noReportFlag, noReportFlagName, viper.GetBool(noReportFlagName), "do not write a run report")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noReportFlagName), noReportFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching glob pattern (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "narrate every decision and log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
