// Package commands implements the Homefix operator CLI.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-cli/ui"
	"github.com/cswnn/Capstone-Homefix2/internal/config"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

var (
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool
)

// env is the state shared by every subcommand.
type env struct {
	cfg    *config.Config
	logger *observability.Logger
	ui     *ui.UI
}

// NewRootCmd builds the command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "homefix-cli",
		Short: "Operator tools for the Homefix assistant backend",
		Long: `homefix-cli inspects the knowledge base, exercises the classifier and the
product recommendation pipeline, and reads the interaction audit trail using the
same configuration as the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			path := cfgFile
			if path == "" {
				path = os.Getenv("CONFIG_PATH")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			e.cfg = cfg
			e.logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      "console",
				Output:      os.Stderr,
				ServiceName: "homefix-cli",
			})
			e.ui = ui.New(cmd.OutOrStdout(), outputJSON, noColor)
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: $CONFIG_PATH or built-in defaults)")
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newTitlesCmd(e),
		newSearchCmd(e),
		newRecommendCmd(e),
		newClassifyCmd(e),
		newAuditCmd(e),
		newPurgeCacheCmd(e),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(os.Stdout).Execute()
}
