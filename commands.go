// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/votememaybe/cliparse"
	"github.com/danielhkuo/votememaybe/idbridge"
	"github.com/danielhkuo/votememaybe/middleware"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/router"
)

// newRootCommand creates the votememaybe CLI. Without a subcommand it serves.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "votememaybe",
		Short:         "VoteMeMaybe proposal voting API",
		Long:          "Serve and inspect proposals recorded on a voting contract and a database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	cliparse.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newProposalsCommand())
	cmd.AddCommand(newMappingsCommand())

	return cmd
}

// withApp loads configuration from the command's flags and opens the app
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := cliparse.Load(cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.start(ctx); err != nil {
			slog.Warn("initial load failed", "error", err)
		}

		mux := router.NewRouter(a.state, a.db)

		server := http.Server{
			Handler:           middleware.CORS(a.cfg.CORSOrigins)(mux),
			Addr:              ":" + strconv.Itoa(a.cfg.Port),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// signal.Notify requires the channel to be buffered
		ctrlc := make(chan os.Signal, 1)
		signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ctrlc)
		go func() {
			// Wait for Ctrl-C signal
			<-ctrlc
			server.Close()
		}()

		slog.Info("Listening", "port", a.cfg.Port, "contract", a.engine.HasContract())
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server closed", "error", err)
			return err
		}
		slog.Info("Server closed", "error", err)
		return nil
	})
}

func newProposalsCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Load proposals from the configured stores and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.start(ctx); err != nil {
					return err
				}

				proposals := a.state.Proposals()
				if status != "" {
					var err error
					if proposals, err = a.state.ProposalsByStatus(status); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				if len(proposals) == 0 {
					fmt.Fprintln(out, "no proposals")
					return nil
				}
				for _, p := range proposals {
					printProposal(cmd, p)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show proposals with this status")

	return cmd
}

func printProposal(cmd *cobra.Command, p models.Proposal) {
	created := p.CreatedAt
	if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		created = humanize.Time(t)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s  %s\n", p.ID, p.Status, p.Title)
	fmt.Fprintf(cmd.OutOrStdout(), "    approve %s  reject %s  total %s  by %s %s\n",
		humanize.Comma(p.ApproveCount),
		humanize.Comma(p.RejectCount),
		humanize.Comma(p.TotalVotes),
		p.CreatedBy,
		created,
	)
}

func newMappingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Inspect and repair identifier mappings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <external-id>",
		Short: "Print the contract ID mapped to an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				n := a.bridge.LookupContractID(ctx, args[0])
				if n == 0 {
					return fmt.Errorf("no mapping for %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <external-id> <contract-id>",
		Short: "Record a mapping; an existing conflicting mapping is kept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contractID, ok := idbridge.ParseNumeric(args[1])
			if !ok || contractID == 0 {
				return fmt.Errorf("invalid contract id %q", args[1])
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				a.bridge.StoreMapping(ctx, args[0], contractID)
				if got := a.bridge.LookupContractID(ctx, args[0]); got != contractID {
					return fmt.Errorf("%q is mapped to %d", args[0], got)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %d\n", args[0], contractID)
				return nil
			})
		},
	})

	var title string
	resolve := &cobra.Command{
		Use:   "resolve <external-id>",
		Short: "Resolve an identifier against the contract and record the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var catalog idbridge.Catalog
				if a.gateway != nil {
					catalog = a.gateway
				}
				n, step := idbridge.NewResolver(a.bridge, catalog).Resolve(ctx, args[0], title)
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %d (%s)\n", args[0], n, step)
				return nil
			})
		},
	}
	resolve.Flags().StringVar(&title, "title", "", "proposal title used for the title search")
	cmd.AddCommand(resolve)

	return cmd
}
