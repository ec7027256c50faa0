package cmd

import (
	"fmt"
	"os"

	"github.com/pgtk/pgtk/cmd/drop"
	"github.com/pgtk/pgtk/cmd/extract"
	"github.com/pgtk/pgtk/cmd/importer"
	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/version"
	"github.com/spf13/cobra"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "pgtk",
	Short: "PostgreSQL view dependency toolkit",
	Long: fmt.Sprintf(`pgtk extracts, drops and recreates PostgreSQL views and materialized
views in an order that respects their dependencies.

Version: %s

Commands:
  extract  Archive the definitions of views depending on an object
  drop     Drop archived or dependent views
  import   Recreate archived views

Use "pgtk [command] --help" for more information about a command.`,
		version.Get()),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(os.Stderr, Debug)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(extract.ExtractCmd)
	RootCmd.AddCommand(drop.DropCmd)
	RootCmd.AddCommand(importer.ImportCmd)
	RootCmd.AddCommand(VersionCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
