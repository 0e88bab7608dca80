package domain

import (
	"encoding/binary"
	"fmt"

	"github.com/keeplegacy/docvault/internal/errors"
)

// EncryptedPayload is the unit the cipher engine produces and consumes.
//
// The authentication tag is carried separately from the ciphertext so that
// tampering with either is detected independently and so the stored form is
// explicit about its layout. KeyVersion records which encryption key produced
// the payload, allowing decryption after key rotation.
type EncryptedPayload struct {
	Ciphertext []byte
	Nonce      []byte
	AuthTag    []byte
	KeyVersion string
	Algorithm  Algorithm
}

// payloadFormatVersion tags the serialized payload layout.
const payloadFormatVersion = byte(1)

// Marshal serializes the payload for object storage.
//
// Layout: version(1) | keyVersionLen(2) | keyVersion | algorithmLen(2) |
// algorithm | nonce(12) | authTag(16) | ciphertext. Fixed-size fields are not
// length-prefixed; the remainder of the buffer is ciphertext.
func (p *EncryptedPayload) Marshal() ([]byte, error) {
	if len(p.Nonce) != NonceSize {
		return nil, errors.Wrap(errors.ErrInvalidInput, "payload nonce must be 12 bytes")
	}
	if len(p.AuthTag) != TagSize {
		return nil, errors.Wrap(errors.ErrInvalidInput, "payload auth tag must be 16 bytes")
	}

	buf := make([]byte, 0, 1+2+len(p.KeyVersion)+2+len(p.Algorithm)+NonceSize+TagSize+len(p.Ciphertext))
	buf = append(buf, payloadFormatVersion)
	buf = appendUint16Prefixed(buf, []byte(p.KeyVersion))
	buf = appendUint16Prefixed(buf, []byte(p.Algorithm))
	buf = append(buf, p.Nonce...)
	buf = append(buf, p.AuthTag...)
	buf = append(buf, p.Ciphertext...)
	return buf, nil
}

// UnmarshalPayload parses a stored payload. A truncated or structurally
// invalid buffer fails closed with ErrIntegrity: the payload cannot be
// authenticated, so no field content is trusted.
func UnmarshalPayload(raw []byte) (*EncryptedPayload, error) {
	if len(raw) < 1 {
		return nil, errors.Wrap(errors.ErrIntegrity, "empty payload")
	}
	if raw[0] != payloadFormatVersion {
		return nil, errors.Wrap(errors.ErrIntegrity,
			fmt.Sprintf("unknown payload format version %d", raw[0]))
	}
	rest := raw[1:]

	keyVersion, rest, err := readUint16Prefixed(rest)
	if err != nil {
		return nil, err
	}
	algorithm, rest, err := readUint16Prefixed(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) < NonceSize+TagSize {
		return nil, errors.Wrap(errors.ErrIntegrity, "truncated payload")
	}

	return &EncryptedPayload{
		Nonce:      rest[:NonceSize],
		AuthTag:    rest[NonceSize : NonceSize+TagSize],
		Ciphertext: rest[NonceSize+TagSize:],
		KeyVersion: string(keyVersion),
		Algorithm:  Algorithm(algorithm),
	}, nil
}

func appendUint16Prefixed(buf, data []byte) []byte {
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(data)))
	buf = append(buf, l[:]...)
	return append(buf, data...)
}

func readUint16Prefixed(buf []byte) (data, rest []byte, err error) {
	if len(buf) < 2 {
		return nil, nil, errors.Wrap(errors.ErrIntegrity, "truncated payload")
	}
	n := int(binary.BigEndian.Uint16(buf[:2]))
	if len(buf) < 2+n {
		return nil, nil, errors.Wrap(errors.ErrIntegrity, "truncated payload")
	}
	return buf[2 : 2+n], buf[2+n:], nil
}
