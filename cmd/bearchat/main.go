// Command bearchat translates live speech transcripts using AI.
package main

import (
	"fmt"
	"os"

	"github.com/ZaguanLabs/bearchat/internal/cli"
)

func main() {
	flags := cli.NewFlags()
	rootCmd := cli.CreateRootCommand(flags)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
