package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	docUseCase "github.com/keeplegacy/docvault/internal/documents/usecase"
)

func TestRunRewrapDocuments(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("complete-text-output", func(t *testing.T) {
		useCase := &fakeDocumentUseCase{
			rewrapAllFn: func(ctx context.Context, batchSize, workers int) (*docUseCase.RewrapReport, error) {
				require.Equal(t, 100, batchSize)
				require.Equal(t, 4, workers)
				return &docUseCase.RewrapReport{
					OldKeyVersions: []string{"old-version"},
					NewKeyVersion:  "new-version",
					Rewrapped:      30,
					Remaining:      0,
				}, nil
			},
		}

		var out bytes.Buffer
		err := RunRewrapDocuments(ctx, useCase, logger, &out, 100, 4, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Rewrapped:   30")
		require.Contains(t, out.String(), "Status: COMPLETE")
	})

	t.Run("json-output", func(t *testing.T) {
		useCase := &fakeDocumentUseCase{
			rewrapAllFn: func(ctx context.Context, batchSize, workers int) (*docUseCase.RewrapReport, error) {
				return &docUseCase.RewrapReport{
					NewKeyVersion: "new-version",
					Rewrapped:     5,
				}, nil
			},
		}

		var out bytes.Buffer
		err := RunRewrapDocuments(ctx, useCase, logger, &out, 50, 2, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"rewrapped": 5`)
		require.Contains(t, out.String(), `"complete": true`)
	})

	t.Run("incomplete-run", func(t *testing.T) {
		useCase := &fakeDocumentUseCase{
			rewrapAllFn: func(ctx context.Context, batchSize, workers int) (*docUseCase.RewrapReport, error) {
				return &docUseCase.RewrapReport{
					NewKeyVersion: "new-version",
					Rewrapped:     10,
					Remaining:     3,
				}, nil
			},
		}

		var out bytes.Buffer
		err := RunRewrapDocuments(ctx, useCase, logger, &out, 10, 1, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "rewrap incomplete")
		require.Contains(t, out.String(), "Status: INCOMPLETE")
	})

	t.Run("invalid-batch-size", func(t *testing.T) {
		err := RunRewrapDocuments(ctx, &fakeDocumentUseCase{}, logger, &bytes.Buffer{}, 0, 4, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "batch-size must be greater than 0")
	})

	t.Run("invalid-workers", func(t *testing.T) {
		err := RunRewrapDocuments(ctx, &fakeDocumentUseCase{}, logger, &bytes.Buffer{}, 10, -1, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "workers must be greater than 0")
	})

	t.Run("use-case-error", func(t *testing.T) {
		useCase := &fakeDocumentUseCase{
			rewrapAllFn: func(ctx context.Context, batchSize, workers int) (*docUseCase.RewrapReport, error) {
				return nil, errors.New("boom")
			},
		}

		err := RunRewrapDocuments(ctx, useCase, logger, &bytes.Buffer{}, 10, 2, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to rewrap documents")
	})
}
