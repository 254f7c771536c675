// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the Ember graph engine demo CLI.
//
// It builds the diamond graph y = x·x + x, in which three gradient paths
// reconverge on the shared input x, runs one forward/backward pass, and
// prints the accumulated gradient.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/ember-ml/ember/graph"
	"github.com/ember-ml/ember/ops"
	"github.com/ember-ml/ember/tensor"
)

const version = "v0.1.0-dev"

func main() {
	var (
		x       = flag.Float64("x", 3, "input value for the diamond graph y = x·x + x")
		verbose = flag.Bool("verbose", false, "enable debug logging of node evaluation and gradient flushes")
		showVer = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("Ember graph engine %s\n", version)
		return
	}

	if err := run(*x, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "ember: %v\n", err)
		os.Exit(1)
	}
}

func run(x float64, verbose bool) error {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "ember",
		Level: level,
	})

	input, err := tensor.FromSlice([]float64{x}, tensor.Shape{1, 1})
	if err != nil {
		return err
	}

	v := ops.NewVariable(input, graph.WithLogger(logger))
	y := ops.Add(
		ops.Mul(v.Node(), v.Node(), graph.WithLogger(logger)),
		v.Node(),
		graph.WithLogger(logger),
	)

	value, err := ops.Backprop(context.Background(), y)
	if err != nil {
		return err
	}

	fmt.Printf("y  = x·x + x  at x = %g\n", x)
	fmt.Printf("y  = %s\n", value)
	fmt.Printf("dy/dx = %s (expected 2x+1 = %g)\n", v.Grad(), 2*x+1)
	return nil
}
