package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var orphansJSON bool

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Report stored blobs nothing references and references to missing blobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()
		c, err := adminClient(cmd.Context(), log)
		if err != nil {
			return err
		}
		report, err := c.StorageAudit(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if orphansJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Fprintf(out, "prefix %s: %d stored, %d referenced\n", report.Prefix, report.StoredKeys, report.ReferencedKeys)
		for _, k := range report.Unreferenced {
			fmt.Fprintf(out, "unreferenced  %s\n", k)
		}
		for _, k := range report.Missing {
			fmt.Fprintf(out, "missing       %s\n", k)
		}
		for _, id := range report.DetachedNodes {
			fmt.Fprintf(out, "detached node %s\n", id)
		}
		return nil
	},
}

func init() {
	orphansCmd.Flags().BoolVar(&orphansJSON, "json", false, "print the raw report")
}
