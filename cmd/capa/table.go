package main

import "github.com/jedib0t/go-pretty/v6/table"

// renderTable renders rows under headers in the rounded style shared by
// every capa listing. Rows shorter than the header are padded so ragged
// input never shifts columns.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	for _, row := range rows {
		cells := make(table.Row, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		tw.AppendRow(cells)
	}
	return tw.Render()
}
