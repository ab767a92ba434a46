package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"rustdex/internal/flatten"
)

// ColorMode controls table colorization.
type ColorMode string

const (
	ColorAuto ColorMode = "auto"
	ColorOn   ColorMode = "on"
	ColorOff  ColorMode = "off"
)

// ParseColorMode maps a flag value to a ColorMode, defaulting to auto
// for anything unrecognized.
func ParseColorMode(s string) ColorMode {
	switch ColorMode(s) {
	case ColorOn, ColorOff:
		return ColorMode(s)
	}
	return ColorAuto
}

// TableOptions tunes table rendering.
type TableOptions struct {
	// Color selects colorization; auto colors only real terminals.
	Color ColorMode
	// Width caps the table width; 0 detects the terminal, falling
	// back to 120 columns.
	Width int
}

const (
	fallbackWidth = 120
	minDeclWidth  = 16
	columnGap     = "  "
)

var tableHeader = []string{"Kind", "Name", "Signature", "Generics", "Stability", "Methods"}

// WriteTable renders records as an aligned table. The signature column
// absorbs any width pressure and gets truncated with an ellipsis; all
// other columns size to their content.
func WriteTable(w io.Writer, records []flatten.Record, opts TableOptions) error {
	width := opts.Width
	if width <= 0 {
		width = detectWidth(w)
	}
	colorize := shouldColorize(w, opts.Color)

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			string(r.Kind),
			r.Name,
			r.Decl,
			yesNo(r.HasGenerics),
			string(r.Stability),
			strconv.Itoa(r.FnCount),
		}
	}

	widths := columnWidths(tableHeader, rows)
	shrinkDeclColumn(widths, width)

	bold := color.New(color.Bold)
	stable := color.New(color.FgGreen)
	unstable := color.New(color.FgYellow)
	if colorize {
		// The package globally disables color off-terminal; an
		// explicit "on" must still win.
		bold.EnableColor()
		stable.EnableColor()
		unstable.EnableColor()
	}

	// Header and rule
	var header []string
	for i, h := range tableHeader {
		cell := pad(h, widths[i])
		if colorize {
			cell = bold.Sprint(cell)
		}
		header = append(header, cell)
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(header, columnGap), " ")); err != nil {
		return err
	}
	var rule []string
	for _, cw := range widths {
		rule = append(rule, strings.Repeat("-", cw))
	}
	if _, err := fmt.Fprintln(w, strings.Join(rule, columnGap)); err != nil {
		return err
	}

	const stabilityCol = 4
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cell = runewidth.Truncate(cell, widths[i], "…")
			padded := pad(cell, widths[i])
			if colorize && i == stabilityCol {
				if cell == string(flatten.Stable) {
					padded = stable.Sprint(padded)
				} else {
					padded = unstable.Sprint(padded)
				}
			}
			cells[i] = padded
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, columnGap), " ")); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n%d records\n", len(records)); err != nil {
		return err
	}
	return nil
}

func detectWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallbackWidth
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallbackWidth
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return fallbackWidth
	}
	return cols
}

func shouldColorize(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorOn:
		return true
	case ColorOff:
		return false
	}
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	return widths
}

// shrinkDeclColumn narrows the signature column until the table fits,
// but never below minDeclWidth.
func shrinkDeclColumn(widths []int, limit int) {
	const declCol = 2
	total := len(columnGap) * (len(widths) - 1)
	for _, cw := range widths {
		total += cw
	}
	if total <= limit {
		return
	}
	widths[declCol] -= total - limit
	if widths[declCol] < minDeclWidth {
		widths[declCol] = minDeclWidth
	}
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
