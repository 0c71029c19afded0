package main

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	apiclient "github.com/ws-flare/ws-flare-graphql/pkg/api/client"
)

func newTable(out io.Writer, header table.Row) table.Writer {
	w := table.NewWriter()
	w.SetOutputMirror(out)
	w.SetStyle(table.StyleLight)
	w.AppendHeader(header)
	return w
}

func renderSocketTicks(out io.Writer, ticks []apiclient.SocketTick) {
	w := newTable(out, table.Row{"Tick", "From", "To", "Connected"})
	for _, t := range ticks {
		w.AppendRow(table.Row{t.Tick, t.GT, t.LT, t.Connected.Count})
	}
	w.AppendFooter(table.Row{"", "", "Buckets", len(ticks)})
	w.Render()
}

func renderUsageTicks(out io.Writer, ticks []apiclient.UsageTick) {
	w := newTable(out, table.Row{"Tick", "From", "Samples", "CPU avg", "CPU max", "Mem avg", "Mem max"})
	for _, t := range ticks {
		s := t.Stats
		w.AppendRow(table.Row{t.Tick, t.GT, s.Samples, formatFloat(s.CPUAvg), formatFloat(s.CPUMax), formatFloat(s.MemAvg), formatFloat(s.MemMax)})
	}
	w.Render()
}

func renderJob(out io.Writer, job apiclient.Job) {
	w := newTable(out, table.Row{"Job", "Task", "Created", "Running", "Passed"})
	w.AppendRow(table.Row{job.ID, job.TaskID, job.CreatedAt, formatBool(job.IsRunning), formatBool(job.Passed)})
	w.Render()
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatBool(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}
