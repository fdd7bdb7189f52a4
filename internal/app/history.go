package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"recogstats/internal/config"
	"recogstats/internal/storage/sqlite"

	"github.com/spf13/cobra"
)

func runHistory(cmd *cobra.Command, configPath string, hf historyFlags) error {
	cfg, err := config.Load(configPath, config.WithoutOrgURLs())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("history needs db_path (or DB_PATH) to be configured")
	}
	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	org := strings.TrimPrefix(hf.org, cfg.OrgMarker)
	rows, err := sqlite.OrgHistory(db, org, hf.limit)
	if err != nil {
		return fmt.Errorf("querying history for %s: %w", org, err)
	}
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintf(out, "no history for %s\n", org)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tTOTAL\tACTIVE\tIMAGES\tLONG DESC\tNO END\tINVALID\tLAST MODIFIED\tRUN")
	for _, r := range rows {
		lastModified := r.LastModified
		if lastModified == "" {
			lastModified = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.CreatedAt.In(cfg.Location).Format("2006-01-02 15:04"),
			r.Total, r.Active, r.ImageURLCount, r.LongDescriptionCount,
			r.MissingEndDateCount, r.InvalidDateCount, lastModified, r.RunID,
		)
	}
	return tw.Flush()
}
