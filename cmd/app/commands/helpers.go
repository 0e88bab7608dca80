// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/keeplegacy/docvault/internal/app"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// parseKeyOrigin converts an origin string to cryptoDomain.KeyOrigin.
// Returns an error if the origin string is invalid.
func parseKeyOrigin(originStr string) (cryptoDomain.KeyOrigin, error) {
	switch originStr {
	case "local":
		return cryptoDomain.OriginLocal, nil
	case "managed":
		return cryptoDomain.OriginManaged, nil
	default:
		return "", fmt.Errorf(
			"invalid key origin: %s (valid options: local, managed)",
			originStr,
		)
	}
}
