// Package main provides the entry point for the pvassess command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pv-case-assessor/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
