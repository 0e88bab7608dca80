package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register managed key service drivers.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper is the narrow wrap/unwrap surface the vault needs from a managed
// key service. *secrets.Keeper satisfies it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// OpenKeeper opens a managed key service keeper for the configured provider.
// Supported URI schemes: awskms://, gcpkms://, azurekeyvault://,
// hashivault://, base64key:// (local, for development and tests).
func OpenKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open key service keeper: %w", err)
	}
	return keeper, nil
}
