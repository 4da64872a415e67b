package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/chat-assistant-go/pkg/chat"
	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
	"github.com/minhyannv/chat-assistant-go/pkg/page"
)

// replOptions configures REPL behavior.
type replOptions struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

// runREPL runs a line-oriented chat on in/out until EOF or /quit.
func runREPL(ctx context.Context, session *chat.Session, opts replOptions, in io.Reader, out io.Writer) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", map[string]any{"session": session.ID()})

	scanner := bufio.NewScanner(in)
	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		handled, shouldQuit := handleCommand(input, session, out)
		if shouldQuit {
			break
		}
		if handled {
			continue
		}

		_, _ = fmt.Fprintf(out, "%s\n", page.Thinking)
		turn, err := session.Submit(ctx, line)
		if err != nil {
			if errors.Is(err, chat.ErrEmptyMessage) {
				continue
			}
			_, _ = fmt.Fprintf(out, "Error: %v\n\n", err)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\n\n", turn.Content)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintf(out, "=== %s ===\n", page.Title)
	_, _ = fmt.Fprintln(out, page.Subtitle)
	_, _ = fmt.Fprintln(out, "Type your message and press Enter. Commands:")
	printCommands(out)
}

func printCommands(out io.Writer) {
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /clear - Clear chat history")
	_, _ = fmt.Fprintln(out, "  /quit  - Exit the program")
	_, _ = fmt.Fprintln(out, "  /exit  - Exit the program")
	_, _ = fmt.Fprintln(out, "Any other input, including text starting with /, is sent as a message.")
	_, _ = fmt.Fprintln(out)
}

func handleCommand(input string, session *chat.Session, out io.Writer) (bool, bool) {
	cmd := strings.ToLower(input)
	switch cmd {
	case "/help", "/h":
		_, _ = fmt.Fprintln(out, "Commands:")
		printCommands(out)
		return true, false
	case "/clear", "/c":
		session.Clear()
		_, _ = fmt.Fprintln(out, "Chat history cleared.")
		_, _ = fmt.Fprintln(out)
		return true, false
	case "/quit", "/exit", "/q":
		_, _ = fmt.Fprintln(out, "Goodbye!")
		return true, true
	default:
		return false, false
	}
}
