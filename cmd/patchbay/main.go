// SPDX-License-Identifier: GPL-3.0-or-later

// Command patchbay interconnects two protocol endpoints described by a
// bracketed tree expression, the way socat interconnects two file
// descriptors.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bassosimone/patchbay"
	"github.com/bassosimone/patchbay/nodes"
	"github.com/bassosimone/patchbay/patchtree"
)

// Exit codes. 0 means success; anything else distinguishes a
// construction-time failure (bad tree, unknown class, schema mismatch)
// from a runtime failure (a session actually failed to run).
const (
	ExitCodeConstruction = 1
	ExitCodeRuntime      = 2
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("patchbay", flag.ContinueOnError)
	dumpSpec := fs.Bool("dump-spec", false, "print the registered node classes and their properties, then exit")
	dryRun := fs.Bool("dry-run", false, "build the circuit and exit without running it")
	showVersion := fs.Bool("version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: patchbay [flags] '[session left=[...] right=[...]]'\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return ExitCodeConstruction
	}

	if *showVersion {
		fmt.Println("patchbay " + version)
		return 0
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := patchbay.NewConfig()
	cfg.Logger = logger
	reg := patchbay.NewRegistry(logger)
	nodes.RegisterAll(reg, cfg)

	if *dumpSpec {
		printSpec(reg)
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return ExitCodeConstruction
	}

	circuit, root, err := buildCircuit(fs.Arg(0), reg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "patchbay: construction error:", err)
		return ExitCodeConstruction
	}
	if *dryRun {
		fmt.Println("patchbay: circuit built successfully,", circuit.Nodes.Len(), "nodes")
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := nodes.SessionOptsFromRoot(root)
	runtimeFailed := false
	err = patchbay.Serve(ctx, circuit, opts, func(sessionErr error) {
		runtimeFailed = true
		fmt.Fprintln(os.Stderr, "patchbay: session error:", sessionErr)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "patchbay: fatal error:", err)
		return ExitCodeRuntime
	}
	if runtimeFailed {
		return ExitCodeRuntime
	}
	return 0
}

// buildCircuit parses, macro-expands, and builds expr into a [*patchbay.Circuit],
// returning the root node alongside it for [nodes.SessionOptsFromRoot].
func buildCircuit(expr string, reg *patchbay.Registry) (*patchbay.Circuit, patchbay.DataNode, error) {
	tree, err := patchtree.Parse(expr)
	if err != nil {
		return nil, nil, err
	}
	cliOpts := patchbay.CLIOpts{}
	tree, err = patchbay.ExpandMacros(tree, reg, cliOpts)
	if err != nil {
		return nil, nil, err
	}
	circuit, err := patchbay.Build(tree, reg, cliOpts)
	if err != nil {
		return nil, nil, err
	}
	return circuit, circuit.RootNode(), nil
}

func printSpec(reg *patchbay.Registry) {
	for _, name := range reg.ClassNames() {
		class, ok := reg.LookupClass(name)
		if !ok {
			continue
		}
		fmt.Printf("%s\n", name)
		for _, p := range class.Properties() {
			fmt.Printf("  %-20s %-12s %s\n", p.Name, p.Type, p.Help)
		}
		if arr := class.Array(); arr != nil {
			fmt.Printf("  %-20s %-12s %s\n", "[positional]", arr.Type, arr.Help)
		}
	}
}
