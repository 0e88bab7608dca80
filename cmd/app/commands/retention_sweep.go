package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	docUseCase "github.com/keeplegacy/docvault/internal/documents/usecase"
)

// RunRetentionSweep archives documents whose retention window has passed.
// Supports dry-run mode to preview the affected count and both text/JSON
// output formats.
//
// Requirements: Database must be migrated and accessible.
func RunRetentionSweep(
	ctx context.Context,
	documentUseCase docUseCase.DocumentUseCase,
	logger *slog.Logger,
	writer io.Writer,
	dryRun bool,
	format string,
) error {
	logger.Info("running retention sweep", slog.Bool("dry_run", dryRun))

	report, err := documentUseCase.SweepExpired(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to sweep expired documents: %w", err)
	}

	if format == "json" {
		if err := outputSweepJSON(writer, report, dryRun); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputSweepText(writer, report, dryRun)
	}

	logger.Info("retention sweep completed",
		slog.Int64("archived", report.Archived),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputSweepText outputs the sweep result in human-readable text format.
func outputSweepText(writer io.Writer, report *docUseCase.SweepReport, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would archive %d expired document(s)\n", report.Archived)
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully archived %d expired document(s)\n", report.Archived)
	}
}

// outputSweepJSON outputs the sweep result in JSON format for machine consumption.
func outputSweepJSON(writer io.Writer, report *docUseCase.SweepReport, dryRun bool) error {
	result := map[string]interface{}{
		"archived": report.Archived,
		"dry_run":  dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
