package main

import (
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws rows under headers. Columns listed in rightAligned are
// 0-based and hold numeric data such as vcpids or field indexes. Short rows
// are padded with empty cells.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if slices.Contains(rightAligned, i) {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}

// renderFields renders name/value pairs such as element data or resolved
// configuration.
func renderFields(pairs [][2]string) string {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = p[:]
	}
	return renderTable([]string{"Field", "Value"}, rows)
}
