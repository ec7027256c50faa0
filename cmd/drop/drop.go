package drop

import (
	"context"
	"fmt"

	"github.com/pgtk/pgtk/cmd/util"
	"github.com/pgtk/pgtk/internal/catalog"
	"github.com/pgtk/pgtk/internal/color"
	"github.com/pgtk/pgtk/internal/runner"
	"github.com/spf13/cobra"
)

var (
	objectRef string
	dbURI     string
	reorder   bool
	backup    bool
	noColor   bool
)

var DropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop all dependencies of an object",
	Long:  "Drop every view depending on --object_ref (queried live, the archive is refreshed first), or every view in the existing archive when it is omitted. The drop order is discovered by retrying until each statement succeeds.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	util.AddObjectRefFlag(DropCmd.Flags(), &objectRef, "Table, view or materialized view. If empty, drops every archived view and materialized view")
	util.AddDatabaseURIFlag(DropCmd.Flags(), &dbURI)
	DropCmd.Flags().BoolVar(&reorder, "reorder", false, "Rewrite archive levels to the realized drop order")
	DropCmd.Flags().BoolVar(&backup, "backup", false, "Back up the archive before rewriting it")
	DropCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func runDrop(cmd *cobra.Command, args []string) error {
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

	r := runner.New(cfg, conn, catalog.NewInspector(conn))
	result, err := r.Drop(ctx, runner.DropOptions{
		ObjectRef: objectRef,
		Backup:    backup,
		Reorder:   reorder,
	})
	if err != nil {
		return fmt.Errorf("drop failed: %w", err)
	}

	c := color.New(!noColor)
	out := cmd.OutOrStdout()
	for _, rec := range result.Dropped {
		fmt.Fprintln(out, c.FormatRunLine("drop", int(rec.Level), rec.QualifiedName()))
	}
	fmt.Fprintln(out, c.FormatRunSummary("Dropped", len(result.Dropped), result.Sweeps))
	return nil
}
