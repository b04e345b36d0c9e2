package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/kiosk-backend/internal/kiosk/seed"
	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
)

var seedMediaBase string

var seedCmd = &cobra.Command{
	Use:   "seed [manifest.yaml]",
	Short: "Create a content tree and home video from a YAML manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open manifest: %w", err)
		}
		defer f.Close()
		m, err := seed.Parse(f)
		if err != nil {
			return err
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()
		c, err := adminClient(cmd.Context(), log)
		if err != nil {
			return err
		}
		log.Info("Seeding", "manifest", args[0], "nodes", m.Count())
		res, err := seed.Apply(cmd.Context(), log, c, m, seed.BaseURL(seedMediaBase))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d nodes, home replaced: %v\n", res.Nodes, res.Home)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedMediaBase, "media-base", envutil.String("KIOSK_MEDIA_BASE_URL", ""), "public base url that storage keys are joined onto")
}
