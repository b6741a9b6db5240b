package main

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"codeberg.org/snonux/lexstatcldf/internal/batch"
	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/logging"
	"codeberg.org/snonux/lexstatcldf/internal/pipeline"
)

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	if logging.IsTerminal(os.Stdout) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	return tw
}

func renderRunSummary(ds *cldf.Dataset, cfg pipeline.Config, outcome *pipeline.Outcome) string {
	threshold := "engine default"
	if cfg.Threshold != nil {
		threshold = strconv.FormatFloat(*cfg.Threshold, 'g', -1, 64)
	}

	sets := map[string]struct{}{}
	for _, row := range outcome.Cognates {
		sets[row.CognatesetID] = struct{}{}
	}

	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Setting", "Value"})
	tw.AppendRows([]table.Row{
		{"Dataset", ds.Path()},
		{"Method", string(cfg.Method)},
		{"Cluster method", string(cfg.ClusterMethod)},
		{"Threshold", threshold},
		{"Forms staged", outcome.Table.Emitted()},
		{"Forms skipped", outcome.Table.SkippedCount()},
		{"Cognate sets", len(sets)},
		{"Judgments", len(outcome.Cognates)},
		{"CognateTable", outcome.Written.Path},
	})
	if outcome.Written.Archived != "" {
		tw.AppendRow(table.Row{"Archived", outcome.Written.Archived})
	}
	if cfg.BadTokensLog != "" && outcome.BadTokens != nil {
		tw.AppendRow(table.Row{"Bad tokens", len(outcome.BadTokens)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignLeft},
	})
	return tw.Render()
}

func renderBatchSummary(summary batch.Summary) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Dataset", "Status", "Error"})
	for _, r := range summary.Results {
		status := "ok"
		errText := ""
		switch {
		case r.Skipped:
			status = "skipped"
			errText = r.Err.Error()
		case r.Err != nil:
			status = "failed"
			errText = r.Err.Error()
		}
		tw.AppendRow(table.Row{r.Path, status, errText})
	}
	tw.AppendFooter(table.Row{"", strconv.Itoa(summary.Succeeded()) + " ok", strconv.Itoa(summary.Failed()) + " failed, " + strconv.Itoa(summary.Skipped()) + " skipped"})
	return tw.Render()
}
