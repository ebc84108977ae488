// Package main provides the lume CLI: a REPL over a hot-reloading project
// session.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumelang/lume"
	"github.com/lumelang/lume/session"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:      "lume",
		Version:   version,
		Usage:     "Run a lume project with a REPL and hot reload",
		ArgsUsage: "[root_path]",
		Action:    run,
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	projectDir := "."
	if cmd.Args().Len() > 0 {
		projectDir = cmd.Args().First()
	}

	cfg, err := lume.LoadConfig(projectDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no %s found in %s", lume.ConfigFile, projectDir)
		}

		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	root := filepath.Join(projectDir, cfg.Package.Root)
	sess := session.New(root, logger)
	styles := defaultStyles()

	events := make(chan session.SourceEvent, 64)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	go func() {
		err := session.Watch(watchCtx, root, events, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, styles.Error.Render("error: could not watch filesystem events"))
		}
	}()

	// The entry module first, so its dependency graph is warm before the
	// watcher replays the rest of the tree.
	if entry, ok := sess.ModulePathFor(cfg.Package.Entry); ok {
		err := sess.Load(entry, false)
		if err != nil {
			printError(styles, err)
		}
	}

	if startREPL(events, styles) {
		fmt.Println(styles.Dim.Render("lume " + version + " — Ctrl-D to exit"))
	}

	drain(sess, events, styles)

	return nil
}

// drain processes source events in arrival order. It is the only goroutine
// that touches the session.
func drain(sess *session.Session, events <-chan session.SourceEvent, styles *styleSheet) {
	for event := range events {
		switch ev := event.(type) {
		case session.FileEvent:
			modPath, ok := sess.ModulePathFor(ev.Path)
			if !ok {
				continue
			}

			err := sess.Load(modPath, true)
			if err != nil {
				printError(styles, err)
			}
		case session.ReplEvent:
			value, err := sess.EvalStmt(ev.Line)
			if err != nil {
				printError(styles, err)
				continue
			}

			if value != nil {
				fmt.Println(styles.Value.Render(sess.Render(value)))
			}
		case session.ExitEvent:
			return
		}
	}
}

func printError(styles *styleSheet, err error) {
	var label string

	switch session.Classify(err) {
	case session.FailureSyntax:
		label = "syntax error"
	case session.FailureIO:
		label = "io error"
	default:
		label = "runtime error"
	}

	fmt.Println(styles.Error.Render(label+":") + " " + err.Error())
}

// newLogger builds a console logger that stays quiet unless something is
// wrong, so log lines do not fight the REPL for the terminal.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	return cfg.Build()
}
