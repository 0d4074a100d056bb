package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"keyframer/internal/batch"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const statusLabelWidth = 18

// statusReport writes aligned "label: value" lines. Warnings and errors carry
// a trailing [WARN] or [ERROR] tag so they survive without colour.
type statusReport struct {
	w        io.Writer
	colorize bool
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{w: w, colorize: shouldColorize(w)}
}

func (r *statusReport) section(title string) {
	title = strings.TrimSpace(title)
	heading := text.Colors{text.Bold, text.FgCyan}
	fmt.Fprintln(r.w, r.paint(heading, title))
	fmt.Fprintln(r.w, r.paint(heading, strings.Repeat("=", text.StringWidthWithoutEscSequences(title))))
}

func (r *statusReport) line(label string, kind statusKind, value string) {
	row := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", value)
	switch kind {
	case statusWarn:
		row += " [WARN]"
	case statusError:
		row += " [ERROR]"
	}
	fmt.Fprintln(r.w, r.paint(kindColors(kind), strings.TrimRight(row, " ")))
}

// counts folds a batch tally into the Extracted/Skipped/Failed lines.
func (r *statusReport) counts(c batch.Counts, elapsed time.Duration) {
	r.line("Extracted", statusOK, strconv.Itoa(c.Success))
	r.line("Skipped", statusInfo, strconv.Itoa(c.Skipped))
	failed := statusOK
	if c.Failed > 0 {
		failed = statusError
	}
	r.line("Failed", failed, strconv.Itoa(c.Failed))
	r.line("Elapsed", statusInfo, elapsed.Round(time.Millisecond).String())
}

func (r *statusReport) paint(colors text.Colors, s string) string {
	if !r.colorize || len(colors) == 0 {
		return s
	}
	return colors.Sprint(s)
}

func kindColors(kind statusKind) text.Colors {
	switch kind {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return nil
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
