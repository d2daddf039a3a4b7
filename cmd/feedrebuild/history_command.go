package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"feedrebuild/internal/history"
	"feedrebuild/internal/rebuild"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List previous rebuild runs, or the feed outcomes of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("run history is disabled (history.enabled = false)")
			}
			store, err := history.Open(cfg.Paths.HistoryPath)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, strings.TrimSpace(args[0]), jsonOutput)
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					run.ManifestPath,
					strconv.Itoa(run.Stats.Feeds),
					strconv.Itoa(run.Stats.Recorded),
					strconv.Itoa(run.Stats.Skipped()),
					yesNo(run.DryRun),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Manifest", "Feeds", "Recorded", "Skipped", "Dry run"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

type runDetail struct {
	Run      history.Run       `json:"run"`
	Outcomes []rebuild.Outcome `json:"outcomes"`
}

func showRun(cmd *cobra.Command, store *history.Store, id string, jsonOutput bool) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	outcomes, err := store.Outcomes(cmd.Context(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		if outcomes == nil {
			outcomes = []rebuild.Outcome{}
		}
		return writeJSON(cmd, runDetail{Run: run, Outcomes: outcomes})
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	lines := renderSectionHeader("Run "+run.ID, colorize)
	lines = append(lines,
		renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize),
		renderStatusLine("Duration", statusInfo, run.Duration().Round(time.Millisecond).String(), colorize),
		renderStatusLine("Manifest", statusInfo, run.ManifestPath, colorize),
		renderStatusLine("Recorded", statusOK, fmt.Sprintf("%d of %d", run.Stats.Recorded, run.Stats.Feeds), colorize),
		renderStatusLine("Skipped", countStatus(run.Stats.Skipped(), statusWarn), strconv.Itoa(run.Stats.Skipped()), colorize),
	)
	printLines(out, lines)
	if len(outcomes) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		folder := o.Folder
		if o.Status == rebuild.StatusRecorded {
			folder = o.Folder + " (" + o.Title + ")"
		}
		rows = append(rows, []string{o.URL, string(o.Status), folder, outcomeDetail(o)})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Feed", "Status", "Folder", "Detail"}, rows, nil))
	return nil
}
