package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fraudcheck/internal/httpapi"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Classify one fraud check request",
		Long: `Read a fraud check request body from a file, or stdin when no file is given,
and print the flagged postcodes as a JSON array.

Examples:
  fraudcheck check request.json
  curl -s example.com/batch.json | fraudcheck check`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runCheck,
	}
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	body, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	req, err := httpapi.DecodeCheckRequest(body)
	if err != nil {
		return err
	}

	classifier, err := a.classifier()
	if err != nil {
		return err
	}

	flagged, err := classifier.Classify(cmd.Context(), req.Threshold, req.Applications)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	a.logger.Debug("classified batch",
		"applications", len(req.Applications),
		"flagged", len(flagged),
	)

	out, err := json.Marshal(flagged)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return body, nil
	}

	body, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return body, nil
}
