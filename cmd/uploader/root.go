package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "uploader",
	Short: "Upload files through the multi-image-host gateway",
	Long:  `A CLI client for the multi-image-host gateway. Files are sent one at a time to freeimage.host, ImgBB or Gofile.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var w io.Writer = io.Discard
		if verbose {
			w = os.Stderr
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("MIH_SERVER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "gateway base URL (env MIH_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(sessionCmd)
}
