package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"scholar/internal/ideagen"
	"scholar/internal/review"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func errorStyle(msg string) string { return red(msg) }

// isTTY reports whether stdout is an interactive terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth falls back to 80 columns when stdout is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return 80
}

func printReview(w io.Writer, res *review.Result) {
	rec := res.Record
	decision, ok := rec.Decision()
	verdict := gray("none")
	if ok {
		verdict = red(string(decision))
		if decision == review.DecisionAccept {
			verdict = green(string(decision))
		}
	}
	fmt.Fprintf(w, "%s %s\n", bold("Decision:"), verdict)
	if summary := rec.String("Summary"); summary != "" {
		if isTTY() {
			summary = wrap(summary, terminalWidth()-10)
		}
		fmt.Fprintf(w, "%s %s\n", bold("Summary:"), summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Scores"))
	width := 0
	for _, f := range res.Rubric.ScoreFields() {
		width = max(width, len(f.Name))
	}
	for _, f := range res.Rubric.ScoreFields() {
		label := fmt.Sprintf("  %-*s", width, f.Name)
		v, ok := rec.Number(f.Name)
		if !ok {
			fmt.Fprintf(w, "%s  %s\n", label, gray("-"))
			continue
		}
		line := fmt.Sprintf("%s  %s / %.0f", label, scoreStyle(v, f), f.Max)
		if res.Aggregation != nil {
			if n := res.Aggregation.Contributing(f.Name); n < len(res.Ensemble) {
				line += gray(fmt.Sprintf("  (%d of %d reviewers)", n, len(res.Ensemble)))
			}
		}
		fmt.Fprintln(w, line)
	}

	printList(w, "Strengths", rec.Strings("Strengths"))
	printList(w, "Weaknesses", rec.Strings("Weaknesses"))
	printList(w, "Questions", rec.Strings("Questions"))

	fmt.Fprintln(w)
	status := fmt.Sprintf("reflection %s after %d round(s)", res.Reflection, res.ReflectionRounds)
	if len(res.Ensemble) > 0 {
		status = fmt.Sprintf("%d reviewers, %s", len(res.Ensemble), status)
	}
	if res.MetaReviewFailed {
		status += ", meta-review fell back to first reviewer"
	}
	if res.Truncated {
		status += ", proposal truncated"
	}
	fmt.Fprintln(w, gray(status))
}

func scoreStyle(v float64, f review.ScoreField) string {
	s := fmt.Sprintf("%.0f", v)
	span := f.Max - f.Min
	if span <= 0 {
		return s
	}
	switch ratio := (v - f.Min) / span; {
	case ratio >= 0.7:
		return green(s)
	case ratio >= 0.4:
		return yellow(s)
	default:
		return red(s)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold(title))
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func printMessage(w io.Writer, m ideagen.Message) {
	fmt.Fprintf(w, "%s %s\n%s\n\n", gray(fmt.Sprintf("[turn %d]", m.Turn+1)), cyan(m.Sender), m.Content)
}

func printIdea(w io.Writer, idea ideagen.Idea) {
	fmt.Fprintln(w, bold("Idea: ")+green(idea.Title))
	fields := map[string]string{
		"Problem":         idea.Problem,
		"Motivation":      idea.Motivation,
		"Method":          idea.Method,
		"Experiment plan": idea.ExperimentPlan,
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if fields[name] == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", bold(name+":"), fields[name])
	}
}

// wrap breaks text at word boundaries.
func wrap(text string, width int) string {
	if width < 20 {
		return text
	}
	var b strings.Builder
	col := 0
	for i, word := range strings.Fields(text) {
		if i > 0 {
			if col+1+len(word) > width {
				b.WriteString("\n  ")
				col = 2
			} else {
				b.WriteByte(' ')
				col++
			}
		}
		b.WriteString(word)
		col += len(word)
	}
	return b.String()
}
