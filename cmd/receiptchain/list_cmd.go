package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

// runListCmd implements `receiptchain list`: prints the chain as JSON.
func runListCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var profile string
	cmd.StringVar(&profile, "profile", "", "Path to a profile YAML")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	c, _, err := openChain(ctx, profile, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = c.Close() }()

	receipts, err := c.Receipts()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(receipts)
	return 0
}
