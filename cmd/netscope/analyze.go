package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"netscope/internal/app"
	"netscope/internal/network"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	advice bool
	origin string
	save   bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Print aggregate statistics for a JSON array of network records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), root, opts, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.advice, "advice", false, "attach a recommendation to every record")
	cmd.Flags().StringVar(&opts.origin, "origin", "", "origin for recommendations (openai, local, auto)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "append the result to the statistics history")
	return cmd
}

func runAnalyze(ctx context.Context, root *rootOptions, opts *analyzeOptions, path string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	observations, err := network.ParseObservations(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	stats := network.Aggregate(observations, time.Now())

	if opts.advice || opts.save {
		application, err := app.NewAppBuilder(root.cfg).Build(ctx)
		if err != nil {
			return err
		}
		defer application.Close()
		if opts.advice {
			enriched, err := application.Advisor().AdviseAll(ctx, stats.DetailedAnalysis, opts.origin)
			if err != nil {
				return err
			}
			stats.DetailedAnalysis = enriched
		}
		if opts.save {
			if _, err := application.History().Append(ctx, stats); err != nil {
				return err
			}
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
