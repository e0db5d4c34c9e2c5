// Package format renders reconstructed conversations and component
// listings for the terminal.
package format

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/transcript"
)

const defaultWidth = 100

// TerminalWidth returns the usable output width, falling back to a
// default when stdout is not a terminal.
func TerminalWidth() int {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}

	return width
}

// Styled reports whether ANSI styling should be emitted.
func Styled() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// WriteTranscript renders messages as a chat transcript. Thinking
// blocks are shown collapsed to their first line; tool calls get a
// status glyph; a streaming message is marked.
func WriteTranscript(w io.Writer, msgs []transcript.Message, width int, styled bool) error {
	for i, msg := range msgs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeMessage(w, msg, width, styled); err != nil {
			return err
		}
	}

	return nil
}

func writeMessage(w io.Writer, msg transcript.Message, width int, styled bool) error {
	label := roleLabel(msg, styled)
	if _, err := fmt.Fprintln(w, label); err != nil {
		return err
	}

	for _, block := range msg.Blocks {
		if err := writeBlock(w, block, width, styled); err != nil {
			return err
		}
	}

	return nil
}

func roleLabel(msg transcript.Message, styled bool) string {
	var label string
	switch msg.Role {
	case transcript.RoleUser:
		label = "you"
	case transcript.RoleAssistant:
		label = "agent"
	}
	switch {
	case msg.IsStreaming:
		label += " (streaming)"
	case msg.Failed:
		label += " (failed)"
	}
	if styled {
		return text.Bold.Sprint(label)
	}

	return label
}

func writeBlock(w io.Writer, block transcript.Block, width int, styled bool) error {
	switch b := block.(type) {
	case *transcript.ThinkingBlock:
		line := "  … " + firstLine(b.Content, width-4)
		if styled {
			line = text.Faint.Sprint(line)
		}
		_, err := fmt.Fprintln(w, line)

		return err

	case *transcript.TextBlock:
		for _, line := range strings.Split(strings.TrimRight(b.Content, "\n"), "\n") {
			if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
				return err
			}
		}

		return nil

	case *transcript.ToolCallBlock:
		_, err := fmt.Fprintf(w, "  %s %s %s\n",
			statusGlyph(b.Status, styled), b.Name,
			firstLine(b.Result, width-len(b.Name)-8))

		return err
	}

	return nil
}

func statusGlyph(status events.ToolStatus, styled bool) string {
	var glyph string
	switch status {
	case events.ToolPending:
		glyph = "◌"
	case events.ToolSuccess:
		glyph = "✓"
	case events.ToolError:
		glyph = "✗"
	}
	if !styled {
		return glyph
	}
	switch status {
	case events.ToolSuccess:
		return text.FgGreen.Sprint(glyph)
	case events.ToolError:
		return text.FgRed.Sprint(glyph)
	default:
		return glyph
	}
}

// firstLine collapses content to its first line, truncated to width.
func firstLine(content string, width int) string {
	line, _, _ := strings.Cut(content, "\n")
	if width < 8 {
		width = 8
	}

	return runewidth.Truncate(line, width, "…")
}
