package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/leca/multi-image-host/internal/client"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List upload providers and their limits",
	Args:  cobra.NoArgs,
	RunE:  runProviders,
}

func runProviders(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL, nil, slog.Default())
	infos, err := c.Providers(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range infos {
		status := color.GreenString("configured")
		if !p.Configured {
			status = color.RedString("not configured")
		}
		limit := "no limit"
		if p.MaxSizeFormatted != "" {
			limit = "max " + p.MaxSizeFormatted
		}
		types := "any type"
		if len(p.AllowedTypes) > 0 {
			types = strings.Join(p.AllowedTypes, ", ")
		}
		fmt.Fprintf(out, "%-10s %-16s %s\n", p.ID, p.Name, status)
		fmt.Fprintf(out, "           %s; %s\n", limit, types)
	}
	return nil
}
