package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pywasm/compiler-go/pkg/compiler"
	"pywasm/compiler-go/pkg/driver"
)

func main() {
	os.Exit(run())
}

func run() int {
	outputDir := flag.String("o", "build", "output directory for generated artifacts")
	emit := flag.String("emit", "wat,wasm", "comma-separated artifacts to write (wat, wasm)")
	stamp := flag.Bool("stamp", false, "embed the git revision of the source file")
	flag.Parse()

	entry := flag.Arg(0)
	if entry == "" || flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "usage: pywasmc [options] <file.py>")
		flag.PrintDefaults()
		return 2
	}

	absEntry, err := filepath.Abs(entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var artifacts []compiler.Artifact
	for _, value := range strings.Split(*emit, ",") {
		artifact := compiler.Artifact(strings.ToLower(strings.TrimSpace(value)))
		if artifact != compiler.ArtifactWAT && artifact != compiler.ArtifactWasm {
			fmt.Fprintf(os.Stderr, "pywasmc: unknown -emit value %q\n", value)
			return 2
		}
		artifacts = append(artifacts, artifact)
	}

	loader, err := driver.NewLoader()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer loader.Close()

	source, err := loader.Load(absEntry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var revision string
	if *stamp {
		revision, err = driver.SourceRevision(absEntry)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	base := filepath.Base(absEntry)
	comp := compiler.New(compiler.Options{
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		Emit:     artifacts,
		Revision: revision,
	})
	result, err := comp.Compile(source.Program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := result.Write(*outputDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
