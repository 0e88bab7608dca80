package validation

import (
	"testing"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

func TestUUID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid v7", uuid.Must(uuid.NewV7()).String(), false},
		{"valid v4", uuid.New().String(), false},
		{"empty passes through", "", false},
		{"garbage", "not-a-uuid", true},
		{"truncated", "0198b2c0-1111-7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, UUID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"application/pdf", false},
		{"image/png", false},
		{"application/vnd.ms-excel", false},
		{"pdf", true},
		{"application/", true},
		{"/pdf", true},
		{"application/pdf; charset=utf-8", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validation.Validate(tt.value, ContentType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClassificationAndAccessLevel(t *testing.T) {
	for _, valid := range []string{"personal", "financial", "medical", "legal"} {
		assert.NoError(t, validation.Validate(valid, Classification), valid)
	}
	assert.Error(t, validation.Validate("secret", Classification))
	assert.Error(t, validation.Validate("Legal", Classification))

	for _, valid := range []string{"public", "read", "write", "manage", "admin"} {
		assert.NoError(t, validation.Validate(valid, AccessLevel), valid)
	}
	assert.Error(t, validation.Validate("root", AccessLevel))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"plain name", "will-2026.pdf", false},
		{"spaces allowed", "estate plan v2.pdf", false},
		{"blank", "   ", true},
		{"path separator", "docs/will.pdf", true},
		{"backslash", "docs\\will.pdf", true},
		{"traversal", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, FileName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(validation.NewError("validation_test", "bad value"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "bad value")
}
