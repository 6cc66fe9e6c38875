// Package main is the entry point for the comment vote service.
package main

import (
	"fmt"
	"os"

	"github.com/emilythestrangee/comment-votes/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
