package importer

import (
	"context"
	"fmt"

	"github.com/pgtk/pgtk/cmd/util"
	"github.com/pgtk/pgtk/internal/color"
	"github.com/pgtk/pgtk/internal/runner"
	"github.com/spf13/cobra"
)

var (
	dbURI      string
	withNoData bool
	noColor    bool
)

var ImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import all objects extracted with this tool",
	Long:  "Recreate every archived view and materialized view, deepest level first, together with their indexes.",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

func init() {
	util.AddDatabaseURIFlag(ImportCmd.Flags(), &dbURI)
	ImportCmd.Flags().BoolVar(&withNoData, "with_no_data", false, "Create materialized views WITH NO DATA")
	ImportCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := util.LoadConfig(dbURI)
	if err != nil {
		return err
	}
	ctx := context.Background()

	conn, err := util.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	r := runner.New(cfg, conn, nil)
	result, err := r.Import(ctx, runner.ImportOptions{WithNoData: withNoData})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	c := color.New(!noColor)
	out := cmd.OutOrStdout()
	for i, rec := range result.Imported {
		fmt.Fprintln(out, c.FormatRunLine("import", i+1, rec.QualifiedName()))
	}
	fmt.Fprintln(out, c.FormatRunSummary("Imported", len(result.Imported), result.Sweeps))
	return nil
}
