// Package main provides the retrace CLI: it imports instrumentation trace
// files into the event-sourced state engine, archives the resulting frames,
// and answers point-in-time value and causality queries against them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
