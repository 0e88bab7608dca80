package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("passed-text-output", func(t *testing.T) {
		useCase := &fakeAuditTrailUseCase{
			verifyChainFn: func(ctx context.Context) (int64, error) {
				return 250, nil
			},
		}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Entries Verified: 250")
		require.Contains(t, out.String(), "Status: PASSED")
	})

	t.Run("empty-trail", func(t *testing.T) {
		useCase := &fakeAuditTrailUseCase{
			verifyChainFn: func(ctx context.Context) (int64, error) {
				return 0, nil
			},
		}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Status: No audit logs found")
	})

	t.Run("json-output", func(t *testing.T) {
		useCase := &fakeAuditTrailUseCase{
			verifyChainFn: func(ctx context.Context) (int64, error) {
				return 10, nil
			},
		}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"verified": 10`)
		require.Contains(t, out.String(), `"passed": true`)
	})

	t.Run("chain-broken", func(t *testing.T) {
		useCase := &fakeAuditTrailUseCase{
			verifyChainFn: func(ctx context.Context) (int64, error) {
				return 7, errors.New("signature mismatch at entry 8")
			},
		}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "audit log chain verification failed")
		require.Contains(t, out.String(), "Status: FAILED")
	})
}
