package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
)

const (
	historyFile = ".pywasm_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

// runRepl reads programs terminated by a blank line and compiles and runs
// each one in a fresh module. Nothing carries over between programs.
func runRepl(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "pywasm repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 2
	}
	fmt.Fprintln(stdout, "pywasm repl: end a program with a blank line, :quit to exit")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		source, ok := readProgram(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		trimmed := strings.TrimSpace(source)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return 0
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintln(stdout, "unknown command. Type :quit to exit.")
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(trimmed, "\n", " "))

		// Interrupting a running program cancels it without leaving the repl.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := execute(ctx, []byte(source+"\n"), stdout)
		stop()
		if err != nil {
			fmt.Fprintln(stderr, err)
		}
	}
}

// readProgram collects lines until a blank line. A command on the first
// line is returned on its own.
func readProgram(ln *liner.State) (string, bool) {
	var lines []string
	for {
		prompt := promptMain
		if len(lines) > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if len(lines) == 0 {
				return "", false
			}
			return strings.Join(lines, "\n"), true
		}
		if err != nil {
			return "", false
		}
		if len(lines) == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if strings.TrimSpace(line) == "" {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
	}
}
