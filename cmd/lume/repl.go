package main

import (
	"errors"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"github.com/lumelang/lume/session"
)

// startREPL spawns the line reader goroutine when stdin is a terminal. Lines
// arrive on the event channel; Ctrl-C and Ctrl-D both turn into an Exit
// event, which ends the drain loop cleanly.
func startREPL(events chan<- session.SourceEvent, styles *styleSheet) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false
	}

	rl, err := readline.New(styles.Prompt.Render("> "))
	if err != nil {
		return false
	}

	go func() {
		defer rl.Close()

		for {
			line, err := rl.Readline()

			switch {
			case err == nil:
				events <- session.ReplEvent{Line: line}
			case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
				events <- session.ExitEvent{}
				return
			default:
				events <- session.ExitEvent{}
				return
			}
		}
	}()

	return true
}
