package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	cryptoRepository "github.com/keeplegacy/docvault/internal/crypto/repository"
	cryptoService "github.com/keeplegacy/docvault/internal/crypto/service"
	cryptoUsecase "github.com/keeplegacy/docvault/internal/crypto/usecase"
)

// MasterKeyChain returns the master key chain loaded from environment variables.
func (c *Container) MasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	var err error
	c.masterKeyChainInit.Do(func() {
		c.masterKeyChain, err = cryptoDomain.LoadMasterKeyChainFromEnv()
		if err != nil {
			c.initErrors["masterKeyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeyChain"]; exists {
		return nil, storedErr
	}
	return c.masterKeyChain, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// CipherEngine returns the cipher engine service.
func (c *Container) CipherEngine() cryptoService.CipherEngine {
	c.cipherEngineInit.Do(func() {
		c.cipherEngine = cryptoService.NewCipherEngine(c.AEADManager())
	})
	return c.cipherEngine
}

// KeySources returns the configured key sources. The local source is always
// available; the managed source is added when a key service URI is configured.
func (c *Container) KeySources() ([]cryptoService.KeySource, error) {
	var err error
	c.keySourcesInit.Do(func() {
		c.keySources, err = c.initKeySources()
		if err != nil {
			c.initErrors["keySources"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keySources"]; exists {
		return nil, storedErr
	}
	return c.keySources, nil
}

// KeyManager returns the key manager service.
func (c *Container) KeyManager() (cryptoService.KeyManager, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager()
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// KeyRepository returns the encryption key repository based on database driver.
func (c *Container) KeyRepository() (cryptoUsecase.KeyRepository, error) {
	var err error
	c.keyRepositoryInit.Do(func() {
		c.keyRepository, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepository"]; exists {
		return nil, storedErr
	}
	return c.keyRepository, nil
}

// KeyUseCase returns the encryption key use case.
func (c *Container) KeyUseCase() (cryptoUsecase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// KeyChain returns the in-memory chain of unwrapped encryption keys, loaded
// from the persisted wrapped keys on first access.
func (c *Container) KeyChain() (*cryptoDomain.KeyChain, error) {
	var err error
	c.keyChainInit.Do(func() {
		c.keyChain, err = c.initKeyChain()
		if err != nil {
			c.initErrors["keyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyChain"]; exists {
		return nil, storedErr
	}
	return c.keyChain, nil
}

// initKeySources builds the key sources from configuration.
func (c *Container) initKeySources() ([]cryptoService.KeySource, error) {
	masterKeyChain, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for key sources: %w", err)
	}

	sources := []cryptoService.KeySource{
		cryptoService.NewLocalKeySource(masterKeyChain, c.AEADManager()),
	}

	if c.config.KMSKeyURI != "" {
		keeper, err := cryptoService.OpenKeeper(context.Background(), c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open managed key service: %w", err)
		}
		sources = append(sources, cryptoService.NewManagedKeySource(
			keeper,
			c.config.KMSTimeout,
			c.config.KMSMaxRetries,
		))
	}

	return sources, nil
}

// initKeyManager creates the key manager over the configured sources.
func (c *Container) initKeyManager() (cryptoService.KeyManager, error) {
	sources, err := c.KeySources()
	if err != nil {
		return nil, fmt.Errorf("failed to get key sources for key manager: %w", err)
	}

	return cryptoService.NewKeyManager(sources, c.config.KeyFallbackToLocal, c.Logger()), nil
}

// initKeyRepository creates the key repository based on the database driver.
func (c *Container) initKeyRepository() (cryptoUsecase.KeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLKeyRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyUseCase creates the key use case with all its dependencies.
func (c *Container) initKeyUseCase() (cryptoUsecase.KeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key use case: %w", err)
	}

	keyRepository, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key use case: %w", err)
	}

	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for key use case: %w", err)
	}

	sources, err := c.KeySources()
	if err != nil {
		return nil, fmt.Errorf("failed to get key sources for key use case: %w", err)
	}

	return cryptoUsecase.NewKeyUseCase(txManager, keyRepository, keyManager, sources), nil
}

// initKeyChain loads and unwraps the persisted encryption keys.
func (c *Container) initKeyChain() (*cryptoDomain.KeyChain, error) {
	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for key chain: %w", err)
	}

	keyChain, err := keyUseCase.LoadChain(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load key chain: %w", err)
	}
	return keyChain, nil
}
