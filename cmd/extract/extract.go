package extract

import (
	"context"
	"fmt"

	"github.com/pgtk/pgtk/cmd/util"
	"github.com/pgtk/pgtk/internal/catalog"
	"github.com/pgtk/pgtk/internal/runner"
	"github.com/spf13/cobra"
)

var (
	objectRef string
	dbURI     string
)

var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the DDL of all views depending on an object",
	Long:  "Archive the definitions and indexes of every view and materialized view depending on --object_ref, or of all views when it is omitted. Any existing archive is replaced.",
	Args:  cobra.NoArgs,
	RunE:  runExtract,
}

func init() {
	util.AddObjectRefFlag(ExtractCmd.Flags(), &objectRef, "Table, view or materialized view. If empty, extracts every view and materialized view")
	util.AddDatabaseURIFlag(ExtractCmd.Flags(), &dbURI)
}

func runExtract(cmd *cobra.Command, args []string) error {
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
	records, err := r.Extract(ctx, objectRef)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d objects to %s\n", len(records), cfg.ArchiveDir)
	return nil
}
