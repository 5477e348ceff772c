package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// A canceled context is an orderly shutdown, not a failure to report.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "capa: %v\n", err)
		}
		os.Exit(1)
	}
}
