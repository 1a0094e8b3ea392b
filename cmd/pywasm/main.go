package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"pywasm/compiler-go/pkg/ast"
	"pywasm/compiler-go/pkg/compiler"
	"pywasm/compiler-go/pkg/driver"
	"pywasm/compiler-go/pkg/host"
)

const cliToolVersion = "pywasm 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return runWith(args, os.Stdout, os.Stderr)
}

func runWith(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runFile(args[1:], stdout, stderr)
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "build":
		return runBuild(args[1:], stdout, stderr)
	case "repl":
		return runRepl(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "pywasm: unknown command %q\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pywasm run <file.py>")
	fmt.Fprintln(w, "  pywasm check <file.py>")
	fmt.Fprintln(w, "  pywasm build [dir]")
	fmt.Fprintln(w, "  pywasm repl")
}

func singlePath(command string, args []string, stderr io.Writer) (string, bool) {
	if len(args) != 1 {
		fmt.Fprintf(stderr, "usage: pywasm %s <file.py>\n", command)
		return "", false
	}
	return args[0], true
}

func loadSource(path string, stderr io.Writer) ([]byte, bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return nil, false
	}
	return source, true
}

func runFile(args []string, stdout, stderr io.Writer) int {
	path, ok := singlePath("run", args, stderr)
	if !ok {
		return 2
	}
	source, ok := loadSource(path, stderr)
	if !ok {
		return 1
	}
	if err := execute(context.Background(), source, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// execute compiles source, runs it and prints the entry result, if any.
func execute(ctx context.Context, source []byte, stdout io.Writer) error {
	result, err := compiler.New(compiler.Options{}).CompileSource(source)
	if err != nil {
		return err
	}
	value, err := host.Run(ctx, result.Binary, host.Options{Stdout: stdout})
	if err != nil {
		return err
	}
	if value.HasValue {
		fmt.Fprintln(stdout, formatResult(result.Program, value.Value))
	}
	return nil
}

func formatResult(program *ast.Program, value int32) string {
	if typ, ok := program.Annotation().Type(); ok && typ == ast.TypeBool {
		return host.FormatBool(value)
	}
	return host.FormatNum(value)
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	path, ok := singlePath("check", args, stderr)
	if !ok {
		return 2
	}
	source, ok := loadSource(path, stderr)
	if !ok {
		return 1
	}
	program, err := compiler.New(compiler.Options{}).CheckSource(source)
	if err != nil {
		fmt.Fprintf(stderr, "%s error: %v\n", compiler.ClassOf(err), err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: ok (%s)\n", path, program.Annotation())
	return 0
}

func runBuild(args []string, stdout, stderr io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 2
	}
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	manifest, err := driver.LoadManifest(dir)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	built, err := driver.Build(manifest)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, artifact := range manifest.Emit {
		fmt.Fprintf(stdout, "wrote %s.%s\n", manifest.ArtifactName(), artifact)
	}
	if built.Revision != "" {
		fmt.Fprintf(stdout, "revision %s\n", built.Revision)
	}
	return 0
}
