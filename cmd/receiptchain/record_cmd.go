package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
)

// runRecordCmd implements `receiptchain record`.
//
// Appends one receipt for a completed operation. The returned receipt is
// already durable when it is printed.
func runRecordCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("record", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		profile    string
		op         string
		input      string
		output     string
		inputFile  string
		outputFile string
	)
	cmd.StringVar(&profile, "profile", "", "Path to a profile YAML")
	cmd.StringVar(&op, "op", "", "Operation descriptor, e.g. generate|edit|verify (REQUIRED)")
	cmd.StringVar(&input, "input", "", "Input payload literal")
	cmd.StringVar(&output, "output", "", "Output payload literal")
	cmd.StringVar(&inputFile, "input-file", "", "Read the input payload from a file instead")
	cmd.StringVar(&outputFile, "output-file", "", "Read the output payload from a file instead")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if op == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --op is required")
		return 2
	}

	inputBytes, err := payload(input, inputFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	outputBytes, err := payload(output, outputFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx := context.Background()
	c, _, err := openChain(ctx, profile, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = c.Close() }()

	r, err := c.CreateReceipt(ctx, op, inputBytes, outputBytes)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(r)
	return 0
}

func payload(literal, file string) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		return data, nil
	}
	return []byte(literal), nil
}
