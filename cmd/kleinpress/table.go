package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// sizeTable is the layout every command prints: a header, rows, an optional
// totals footer and right-aligned size or count columns.
type sizeTable struct {
	headers []string
	rows    [][]string
	footer  []string
	// right lists zero-based columns holding numbers.
	right []int
}

func (s sizeTable) write(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	tw.AppendHeader(cells(s.headers))
	for _, r := range s.rows {
		tw.AppendRow(cells(r))
	}
	if len(s.footer) > 0 {
		tw.AppendFooter(cells(s.footer))
	}

	configs := make([]table.ColumnConfig, 0, len(s.right))
	for _, col := range s.right {
		configs = append(configs, table.ColumnConfig{
			Number:      col + 1,
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
			AlignHeader: text.AlignRight,
		})
	}
	tw.SetColumnConfigs(configs)
	tw.Render()
}

func cells(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
