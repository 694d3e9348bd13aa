package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/leca/multi-image-host/internal/client"
	"github.com/leca/multi-image-host/internal/provider"
	"github.com/leca/multi-image-host/internal/results"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run several batches against one result list",
	Long: `Reads commands from stdin and keeps every successful upload in one
result list until the session ends:

  provider <freeimage|imgbb|gofile>   select the provider for later uploads
  upload <file>...                    upload files in order, stopping at the first failure
  list [all|<provider>]               show the result list
  clear                               empty the result list
  quit                                end the session`,
	Args: cobra.NoArgs,
	RunE: runSessionCmd,
}

func init() {
	sessionCmd.Flags().StringVarP(&providerFlag, "provider", "p", string(provider.FreeImage), "initial provider")
}

func runSessionCmd(cmd *cobra.Command, args []string) error {
	id, ok := provider.ParseID(providerFlag)
	if !ok {
		return fmt.Errorf("unknown provider %q", providerFlag)
	}

	store, err := results.NewSQLiteStore("")
	if err != nil {
		return fmt.Errorf("open result list: %w", err)
	}
	defer store.Close()

	s := &session{
		client:   client.New(serverURL, nil, slog.Default()),
		store:    store,
		provider: id,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}
	return s.run(cmd.Context(), cmd.InOrStdin())
}

type session struct {
	client   *client.Client
	store    results.Store
	provider provider.ID
	out      io.Writer
	errOut   io.Writer
}

// run executes one command per input line until quit or end of input. A
// failed batch is reported and the session continues.
func (s *session) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			s.prompt()
			continue
		}

		switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
		case "quit", "exit":
			return nil
		case "provider":
			s.setProvider(args)
		case "upload":
			if len(args) == 0 {
				fmt.Fprintln(s.out, "usage: upload <file>...")
				break
			}
			if err := uploadBatch(ctx, s.out, s.errOut, s.client, s.store, s.provider, args); err != nil {
				color.New(color.FgRed).Fprintf(s.out, "%v\n", err)
			}
		case "list":
			filter := results.FilterAll
			if len(args) > 0 {
				filter = strings.ToLower(args[0])
			}
			if err := checkFilter(filter); err != nil {
				fmt.Fprintln(s.out, err)
				break
			}
			if err := s.list(ctx, filter); err != nil {
				return err
			}
		case "clear":
			if err := s.store.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "result list cleared")
		default:
			fmt.Fprintf(s.out, "unknown command %q\n", cmd)
		}
		s.prompt()
	}
	return scanner.Err()
}

func (s *session) setProvider(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: provider <freeimage|imgbb|gofile>")
		return
	}
	id, ok := provider.ParseID(args[0])
	if !ok {
		fmt.Fprintf(s.out, "unknown provider %q\n", args[0])
		return
	}
	s.provider = id
	fmt.Fprintf(s.out, "provider set to %s\n", id.DisplayName())
}

func (s *session) list(ctx context.Context, filter string) error {
	n, err := s.store.Count(ctx, results.FilterAll)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(s.out, "no results")
		return nil
	}
	return printSummary(ctx, s.out, s.store, filter)
}

func (s *session) prompt() {
	fmt.Fprintf(s.out, "%s> ", s.provider)
}
