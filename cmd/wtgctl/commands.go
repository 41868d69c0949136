package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wtgraph/internal/config"
	"github.com/gyaneshwarpardhi/wtgraph/internal/engine"
	"github.com/gyaneshwarpardhi/wtgraph/internal/export"
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/pipeline"
	"github.com/gyaneshwarpardhi/wtgraph/internal/query"
)

// globals holds the flags shared by every subcommand.
type globals struct {
	hardware       bool
	successorDepth int
	maxPaths       int
	jsonOutput     bool
	verbose        bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "wtgctl",
		Short: "Build and query window transition graphs",
		Long: `wtgctl builds the window transition graph of one application from its
fact file and runs path queries against it.

Examples:
  wtgctl build facts/notes.yaml
  wtgctl explore facts/notes.yaml --depth 3 --feasible
  wtgctl shortest facts/notes.yaml --to Settings
  wtgctl export facts/notes.yaml --format dot -o notes.dot`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.BoolVar(&g.hardware, "hardware", true, "Add rotate, home and power edges")
	pf.IntVar(&g.successorDepth, "successor-depth", pipeline.DefaultSuccessorDepth, "Bound of the close-target search")
	pf.IntVar(&g.maxPaths, "max-paths", 10000, "Stop a query after this many paths (0 = no limit)")
	pf.BoolVar(&g.jsonOutput, "json", false, "Print JSON")
	pf.BoolVar(&g.verbose, "verbose", false, "Log build progress to stderr")

	root.AddCommand(
		newBuildCmd(g),
		newExploreCmd(g),
		newShortestCmd(g),
		newStackCmd(g),
		newComponentsCmd(g),
		newExportCmd(g),
	)
	return root
}

// load builds the graph of file on a private engine.
func (g *globals) load(ctx context.Context, file string) (*engine.Engine, *engine.Snapshot, error) {
	app, err := facts.Load(file)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	conf := config.EngineConf{
		QueryWorkers:     1,
		QueueDepth:       1,
		QueryTimeout:     time.Minute,
		MaxDepth:         64,
		MaxPaths:         g.maxPaths,
		BuildParallelism: 1,
	}
	opts := pipeline.Options{HardwareEvents: g.hardware, SuccessorDepth: g.successorDepth, Diagnostics: true}
	eng := engine.New(ctx, logger, conf, opts)
	snap, err := eng.Build(ctx, app)
	if err != nil {
		eng.Shutdown()
		return nil, nil, err
	}
	return eng, snap, nil
}

func (g *globals) run(cmd *cobra.Command, file string, q *query.Query) error {
	ctx := cmd.Context()
	eng, snap, err := g.load(ctx, file)
	if err != nil {
		return err
	}
	defer eng.Shutdown()

	q.App = snap.App
	q.ID = "cli"
	res, err := eng.Execute(ctx, q)
	if err != nil {
		return err
	}
	if g.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

func newBuildCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "build FILE",
		Short: "Build the graph and print the build report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, snap, err := g.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer eng.Shutdown()

			out := cmd.OutOrStdout()
			if g.jsonOutput {
				return writeJSON(out, map[string]any{"report": snap.Report, "stats": snap.Graph.Stats()})
			}
			r := snap.Report
			st := snap.Graph.Stats()
			fmt.Fprintf(out, "app %s: %d nodes, %d edges, %d back-edge pairs (%s)\n",
				r.App, st.Nodes, st.Edges, r.BackEdgePairs, r.Duration.Round(time.Microsecond))
			for _, s := range r.Stages {
				fmt.Fprintf(out, "  %-18s keys=%-4d edges=%-4d pruned=%d\n", s.Stage, s.Keys, s.Edges, s.Pruned)
			}
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
}

func newExploreCmd(g *globals) *cobra.Command {
	q := &query.Query{Kind: query.KindExplore}
	cmd := &cobra.Command{
		Use:   "explore FILE",
		Short: "List all paths of a given length",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, args[0], q)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.From, "from", "", "Start window (default: launcher)")
	f.IntVar(&q.Depth, "depth", 2, "Path length in edges")
	f.BoolVar(&q.Feasible, "feasible", false, "Keep only paths the window stack accepts")
	f.BoolVar(&q.AllowLoop, "allow-loop", false, "Allow an edge to repeat within a path")
	f.StringVar(&q.Filter, "filter", "", "Edge filter expression")
	return cmd
}

func newShortestCmd(g *globals) *cobra.Command {
	q := &query.Query{Kind: query.KindShortest}
	cmd := &cobra.Command{
		Use:   "shortest FILE",
		Short: "List all shortest paths between two windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, args[0], q)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.From, "from", "", "Start window (default: launcher)")
	f.StringVar(&q.To, "to", "", "Target window")
	f.BoolVar(&q.Feasible, "feasible", false, "Keep only paths the window stack accepts")
	f.StringVar(&q.Filter, "filter", "", "Edge filter expression")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newStackCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stack FILE EDGE_ID...",
		Short: "Replay a path of edge ids on the window stack",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := &query.Query{Kind: query.KindStack}
			for _, a := range args[1:] {
				id, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("edge id %q: %w", a, err)
				}
				q.Path = append(q.Path, id)
			}
			return g.run(cmd, args[0], q)
		},
	}
}

func newComponentsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "components FILE",
		Short: "List the component of every activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, snap, err := g.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer eng.Shutdown()

			comps := query.Components(snap.Graph)
			out := cmd.OutOrStdout()
			if g.jsonOutput {
				return writeJSON(out, comps)
			}
			for _, c := range comps {
				fmt.Fprintf(out, "%s: %s\n", c.Activity, strings.Join(c.Windows, ", "))
				fmt.Fprintf(out, "  boundary: %d forward, %d backward, %d hardware\n",
					len(c.Forward), len(c.Backward), len(c.Hardware))
			}
			return nil
		},
	}
}

func newExportCmd(g *globals) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the graph as dot or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := export.Default().Get(format)
			if err != nil {
				return err
			}
			eng, snap, err := g.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer eng.Shutdown()

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return x.Export(out, snap.App, snap.Graph)
		},
	}
	cmd.Flags().StringVar(&format, "format", "dot", "Output format: "+strings.Join(export.Default().Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func printResult(w io.Writer, res *query.Result) {
	if res.Stack != nil {
		s := res.Stack
		fmt.Fprintf(w, "feasible: %t\n", s.Feasible)
		if s.Feasible {
			fmt.Fprintf(w, "stack: %s\n", strings.Join(s.Windows, " > "))
		}
		fmt.Fprintf(w, "ops: %s\n", strings.Join(s.Ops, ", "))
		fmt.Fprintf(w, "callbacks: %s\n", strings.Join(s.Callbacks, ", "))
		return
	}
	for _, p := range res.Paths {
		mark := " "
		if !p.Feasible {
			mark = "!"
		}
		fmt.Fprintf(w, "%s %s\n", mark, p.Text)
	}
	fmt.Fprintf(w, "%d paths", res.Count)
	if res.NaiveCount > 0 {
		fmt.Fprintf(w, " (%d ignoring the window stack)", res.NaiveCount)
	}
	if res.Truncated {
		fmt.Fprint(w, ", truncated")
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
