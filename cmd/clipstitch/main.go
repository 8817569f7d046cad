package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/kikiluvv/clipstitch/internal/config"
	"github.com/kikiluvv/clipstitch/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipstitch",
	Short: "clipstitch - join clips at their most similar frames",
	Long: "Stitches an ordered list of video clips into one continuous video, " +
		"cutting each pair where the end of one clip looks most like the start of the next.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./clipstitch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(stitchCmd)
	rootCmd.AddCommand(thumbnailCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}
