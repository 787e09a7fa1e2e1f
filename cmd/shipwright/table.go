package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// renderTable renders rows under headers in the rounded box style shared by
// the targets, doctor, and config subcommands.
func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
