package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const previewLines = 20

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(20)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")) // Green

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")) // Yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// renderMarkdown renders content for a terminal, or returns it unchanged when
// rendering is off or fails.
func renderMarkdown(content string, enabled bool) string {
	if !enabled {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// preview returns the first n lines of doc and whether anything was cut.
func preview(doc string, n int) (string, bool) {
	lines := strings.Split(doc, "\n")
	if len(lines) <= n {
		return doc, false
	}
	return strings.Join(lines[:n], "\n"), true
}

func printPreview(w io.Writer, doc string, rendered bool) {
	head, more := preview(doc, previewLines)
	fmt.Fprintln(w, titleStyle.Render("\n=== Preview ===\n"))
	fmt.Fprintln(w, renderMarkdown(head, rendered))
	if more {
		fmt.Fprintln(w, dimStyle.Render("\n...(content continues)...\n"))
	}
}
