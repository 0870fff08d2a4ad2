package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/tracefoundry/receiptchain/pkg/verifier"
)

// runVerifyCmd implements `receiptchain verify`.
//
// Exit codes:
//
//	0 = chain is valid
//	1 = chain is invalid (violations printed)
//	2 = runtime error (store unreadable/corrupted, bad flags)
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		profile    string
		strict     bool
		jsonOutput bool
	)
	cmd.StringVar(&profile, "profile", "", "Path to a profile YAML")
	cmd.BoolVar(&strict, "strict", false, "Re-read the store before verifying (catches out-of-process tampering)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

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

	var report verifier.Report
	if strict {
		report, err = c.VerifyPersisted(ctx)
	} else {
		report, err = c.VerifyChain(ctx)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		if report.Valid {
			_, _ = fmt.Fprintf(stdout, "OK: %d receipts, chain intact\n", report.ReceiptCount)
		} else {
			_, _ = fmt.Fprintf(stdout, "TAMPERED: %d receipts, %d violations\n", report.ReceiptCount, len(report.Errors))
			for _, v := range report.Errors {
				_, _ = fmt.Fprintf(stdout, "  [%s] receipt %d: %s\n", v.Kind, v.Index, v.Detail)
			}
		}
	}

	if !report.Valid {
		return 1
	}
	return 0
}
