package domain

import (
	"encoding/json"
	"time"

	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// Details is the event-specific payload of an audit entry. Each event type
// carries its own detail shape; entries read back with an unknown kind are
// preserved as OpaqueDetails rather than rejected, so old rows survive
// schema evolution.
type Details interface {
	Kind() string
}

type UploadDetails struct {
	FileName       string `json:"file_name"`
	ContentType    string `json:"content_type"`
	Classification string `json:"classification"`
	SizeBytes      int64  `json:"size_bytes"`
}

func (UploadDetails) Kind() string { return "upload" }

type DownloadDetails struct {
	FileName       string `json:"file_name"`
	Classification string `json:"classification"`
	SizeBytes      int64  `json:"size_bytes"`
}

func (DownloadDetails) Kind() string { return "download" }

type DeleteDetails struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason,omitempty"`
}

func (DeleteDetails) Kind() string { return "delete" }

type ArchiveDetails struct {
	FileName           string    `json:"file_name"`
	ArchiveKey         string    `json:"archive_key"`
	RetentionExpiresAt time.Time `json:"retention_expires_at"`
}

func (ArchiveDetails) Kind() string { return "archive" }

type AccessDeniedDetails struct {
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}

func (AccessDeniedDetails) Kind() string { return "access_denied" }

// IntegrityFailureDetails describes a payload that failed AEAD
// authentication or checksum verification during a read.
type IntegrityFailureDetails struct {
	FileName   string `json:"file_name"`
	KeyVersion string `json:"key_version"`
	Reason     string `json:"reason"`
}

func (IntegrityFailureDetails) Kind() string { return "integrity_failure" }

type KeyRotationDetails struct {
	OldKeyVersion  string `json:"old_key_version"`
	NewKeyVersion  string `json:"new_key_version"`
	RewrappedCount int64  `json:"rewrapped_count"`
}

func (KeyRotationDetails) Kind() string { return "key_rotation" }

// OpaqueDetails holds a detail payload whose kind this build does not know.
type OpaqueDetails struct {
	RawKind string
	Raw     json.RawMessage
}

func (o OpaqueDetails) Kind() string { return o.RawKind }

type detailsEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalDetails encodes d into the stored envelope form.
func MarshalDetails(d Details) ([]byte, error) {
	if d == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit details must not be nil")
	}
	var data []byte
	var err error
	if o, ok := d.(OpaqueDetails); ok {
		data = o.Raw
	} else {
		data, err = json.Marshal(d)
		if err != nil {
			return nil, apperrors.Wrap(err, "marshal audit details")
		}
	}
	out, err := json.Marshal(detailsEnvelope{Kind: d.Kind(), Data: data})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal audit details envelope")
	}
	return out, nil
}

// UnmarshalDetails decodes a stored envelope back into its typed form.
func UnmarshalDetails(raw []byte) (Details, error) {
	var env detailsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal audit details envelope")
	}
	decode := func(dst Details) (Details, error) {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			return nil, apperrors.Wrap(err, "unmarshal audit details")
		}
		return dst, nil
	}
	switch env.Kind {
	case "upload":
		d, err := decode(&UploadDetails{})
		if err != nil {
			return nil, err
		}
		return *d.(*UploadDetails), nil
	case "download":
		d, err := decode(&DownloadDetails{})
		if err != nil {
			return nil, err
		}
		return *d.(*DownloadDetails), nil
	case "delete":
		d, err := decode(&DeleteDetails{})
		if err != nil {
			return nil, err
		}
		return *d.(*DeleteDetails), nil
	case "archive":
		d, err := decode(&ArchiveDetails{})
		if err != nil {
			return nil, err
		}
		return *d.(*ArchiveDetails), nil
	case "access_denied":
		d, err := decode(&AccessDeniedDetails{})
		if err != nil {
			return nil, err
		}
		return *d.(*AccessDeniedDetails), nil
	case "integrity_failure":
		d, err := decode(&IntegrityFailureDetails{})
		if err != nil {
			return nil, err
		}
		return *d.(*IntegrityFailureDetails), nil
	case "key_rotation":
		d, err := decode(&KeyRotationDetails{})
		if err != nil {
			return nil, err
		}
		return *d.(*KeyRotationDetails), nil
	default:
		return OpaqueDetails{RawKind: env.Kind, Raw: env.Data}, nil
	}
}
