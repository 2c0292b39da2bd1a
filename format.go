package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// statusf prints a status message to stderr unless quiet mode is set.
func statusf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

var (
	titleCaser   = cases.Title(language.English)
	pricePrinter = message.NewPrinter(language.English)
)

// fullName returns "First Last" with each part title-cased.
func fullName(first, last string) string {
	return strings.TrimSpace(titleCaser.String(first) + " " + titleCaser.String(last))
}

// initials returns up to two upper-case initials, or "?" when both names
// are empty.
func initials(first, last string) string {
	var b strings.Builder

	for _, name := range []string{first, last} {
		if r, _ := utf8.DecodeRuneInString(name); r != utf8.RuneError {
			b.WriteString(strings.ToUpper(string(r)))
		}
	}

	if b.Len() == 0 {
		return "?"
	}

	return b.String()
}

// formatPrice renders an amount with two decimals and thousands separators.
func formatPrice(amount float64) string {
	return pricePrinter.Sprintf("$%.2f", amount)
}

// formatRating renders an average score with its review count.
func formatRating(avg float64, count int) string {
	if count == 0 {
		return "-"
	}

	return fmt.Sprintf("%.1f (%s)", avg, humanize.Comma(int64(count)))
}

// relativeTime returns a phrase such as "3 minutes ago".
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return humanize.Time(t)
}

// formatTime returns a compact timestamp for display.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	now := time.Now()

	// Same calendar year: show "Jan  2 15:04"
	if t.Year() == now.Year() {
		return t.Format("Jan _2 15:04")
	}

	// Different year: show "Jan  2  2006"
	return t.Format("Jan _2  2006")
}

// deref returns *p, or "" for nil.
func deref(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// printTable writes aligned columns to the given writer.
// headers and each row must have the same length.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	printRow(w, headers, widths)

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

// printRow writes a single padded row.
func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
	}

	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}
