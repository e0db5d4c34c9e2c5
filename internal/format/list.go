package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
)

// WriteCanvas writes canvas placements in the requested format.
func WriteCanvas(w io.Writer, items []events.CanvasComponent, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeCanvasTable(w, items)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeCanvasTable(w io.Writer, items []events.CanvasComponent) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
	})

	tw.AppendHeader(table.Row{"component", "x", "y", "size"})
	for _, item := range items {
		size := "-"
		if item.Size != nil {
			size = fmt.Sprintf("%gx%g", item.Size.Width, item.Size.Height)
		}
		tw.AppendRow(table.Row{item.ComponentName, item.Position.X, item.Position.Y, size})
	}
	tw.Render()

	return nil
}

// WriteNames writes a plain list of component names.
func WriteNames(w io.Writer, names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}

	return nil
}
