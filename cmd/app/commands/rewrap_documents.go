package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	docUseCase "github.com/keeplegacy/docvault/internal/documents/usecase"
)

// RunRewrapDocuments re-encrypts every document still on a superseded key under
// the active key, in batches of concurrent workers. Each document moves
// independently, so an interrupted run picks up where it left off.
//
// Requirements: Database must be migrated and the key chain loadable.
func RunRewrapDocuments(
	ctx context.Context,
	documentUseCase docUseCase.DocumentUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	workers int,
	format string,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0, got: %d", batchSize)
	}
	if workers <= 0 {
		return fmt.Errorf("workers must be greater than 0, got: %d", workers)
	}

	logger.Info("starting document rewrap",
		slog.Int("batch_size", batchSize),
		slog.Int("workers", workers),
	)

	report, err := documentUseCase.RewrapAll(ctx, batchSize, workers)
	if err != nil {
		return fmt.Errorf("failed to rewrap documents: %w", err)
	}

	if format == "json" {
		if err := outputRewrapJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputRewrapText(writer, report)
	}

	logger.Info("document rewrap completed",
		slog.Int64("rewrapped", report.Rewrapped),
		slog.Int64("remaining", report.Remaining),
		slog.String("new_key_version", report.NewKeyVersion),
	)

	if report.Remaining > 0 {
		return fmt.Errorf("rewrap incomplete: %d document(s) still on superseded keys", report.Remaining)
	}

	return nil
}

// outputRewrapText outputs the rewrap report in human-readable text format.
func outputRewrapText(writer io.Writer, report *docUseCase.RewrapReport) {
	_, _ = fmt.Fprintf(writer, "Document Rewrap\n")
	_, _ = fmt.Fprintf(writer, "===============\n\n")
	_, _ = fmt.Fprintf(writer, "Target Key:  %s\n", report.NewKeyVersion)
	_, _ = fmt.Fprintf(writer, "Rewrapped:   %d\n", report.Rewrapped)
	_, _ = fmt.Fprintf(writer, "Remaining:   %d\n\n", report.Remaining)

	if len(report.OldKeyVersions) > 0 {
		_, _ = fmt.Fprintf(writer, "Superseded Keys:\n")
		for _, version := range report.OldKeyVersions {
			_, _ = fmt.Fprintf(writer, "  - %s\n", version)
		}
		_, _ = fmt.Fprintln(writer)
	}

	if report.Remaining > 0 {
		_, _ = fmt.Fprintf(writer, "Status: INCOMPLETE (%d document(s) remaining)\n", report.Remaining)
	} else {
		_, _ = fmt.Fprintf(writer, "Status: COMPLETE\n")
	}
}

// outputRewrapJSON outputs the rewrap report in JSON format for machine consumption.
func outputRewrapJSON(writer io.Writer, report *docUseCase.RewrapReport) error {
	result := map[string]interface{}{
		"new_key_version":  report.NewKeyVersion,
		"old_key_versions": report.OldKeyVersions,
		"rewrapped":        report.Rewrapped,
		"remaining":        report.Remaining,
		"complete":         report.Remaining == 0,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
