package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"climate/internal/climate"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Render writes the comparison table and, when withHistory is set, the
// official series below it.
func Render(w io.Writer, cmp Comparison, withHistory bool) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s)", cmp.Name, cmp.Code))); err != nil {
		return err
	}

	rows := make([][]string, 0, len(cmp.Years))
	for _, y := range cmp.Years {
		off, diff := "-", "-"
		if y.Official != nil {
			off = climate.FormatFloat(*y.Official)
			diff = strconv.FormatFloat(y.Predicted-*y.Official, 'f', 3, 64)
		}
		rows = append(rows, []string{strconv.Itoa(y.Year), strconv.FormatFloat(y.Predicted, 'f', 3, 64), off, diff})
	}
	if _, err := fmt.Fprintln(w, newTable("year", "predicted", "official", "difference").Rows(rows...).String()); err != nil {
		return err
	}

	if !withHistory || len(cmp.History) == 0 {
		return nil
	}
	rows = rows[:0]
	for _, o := range cmp.History {
		v := "-"
		if o.Value != nil {
			v = climate.FormatFloat(*o.Value)
		}
		rows = append(rows, []string{o.Column, v})
	}
	_, err := fmt.Fprintln(w, newTable("column", "official").Rows(rows...).String())
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
