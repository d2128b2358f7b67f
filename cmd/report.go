package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/selfassess/internal/timefmt"
)

var reportCmd = &cobra.Command{
	Use:   "report <assessment-id>",
	Short: "Print the report of a submitted assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		identity, err := localIdentity(cmd)
		if err != nil {
			return err
		}
		logger, _ := newLogger(cfg, true)

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, closeSvc, err := openService(cmd.Context(), cfg, st, logger, false)
		if err != nil {
			return err
		}
		defer closeSvc()

		res, err := svc.Report(cmd.Context(), identity, args[0])
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		return res.WriteText(cmd.OutOrStdout())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List assessments visible to the current identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		identity, err := localIdentity(cmd)
		if err != nil {
			return err
		}
		logger, _ := newLogger(cfg, true)

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, closeSvc, err := openService(cmd.Context(), cfg, st, logger, false)
		if err != nil {
			return err
		}
		defer closeSvc()

		recs, err := svc.List(cmd.Context(), identity)
		if err != nil {
			return fmt.Errorf("list assessments: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			_, err := fmt.Fprintln(out, "No assessments found.")
			return err
		}

		now := time.Now()
		tw := newTable(out)
		fmt.Fprintln(tw, "ID\tOWNER\tSTATUS\tUPDATED\tTITLE")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				r.ID, truncate(r.Owner, 16), r.Status,
				timefmt.RelativeTime(r.UpdatedAt, now), r.Title)
		}
		return tw.Flush()
	},
}

func init() {
	reportCmd.Flags().Bool("json", false, "Print the report as JSON")
	rootCmd.AddCommand(listCmd)
}
