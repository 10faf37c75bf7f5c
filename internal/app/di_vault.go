package app

import (
	"fmt"

	cryptoService "github.com/keywell/vault/internal/crypto/service"
	"github.com/keywell/vault/internal/vault/cache"
	vaultRepository "github.com/keywell/vault/internal/vault/repository"
	vaultService "github.com/keywell/vault/internal/vault/service"
	vaultUseCase "github.com/keywell/vault/internal/vault/usecase"
)

// SecretRepository returns the secret metadata repository based on the database driver.
func (c *Container) SecretRepository() (vaultUseCase.SecretRepository, error) {
	var err error
	c.secretRepoInit.Do(func() {
		c.secretRepo, err = c.initSecretRepository()
		if err != nil {
			c.initErrors["secretRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretRepo"]; exists {
		return nil, storedErr
	}
	return c.secretRepo, nil
}

// SecretVersionRepository returns the secret version repository based on the database driver.
func (c *Container) SecretVersionRepository() (vaultUseCase.SecretVersionRepository, error) {
	var err error
	c.versionRepoInit.Do(func() {
		c.versionRepo, err = c.initSecretVersionRepository()
		if err != nil {
			c.initErrors["versionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["versionRepo"]; exists {
		return nil, storedErr
	}
	return c.versionRepo, nil
}

// SecretCache returns the in-memory TTL cache for decrypted secret values.
func (c *Container) SecretCache() *cache.SecretCache {
	c.secretCacheInit.Do(func() {
		c.secretCache = cache.NewSecretCache(c.config.CacheTTL, c.Logger())
	})
	return c.secretCache
}

// VaultUseCase returns the secrets vault use case.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	var err error
	c.vaultUseCaseInit.Do(func() {
		c.vaultUseCase, err = c.initVaultUseCase()
		if err != nil {
			c.initErrors["vaultUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultUseCase"]; exists {
		return nil, storedErr
	}
	return c.vaultUseCase, nil
}

// initSecretRepository creates the secret repository based on the database driver.
func (c *Container) initSecretRepository() (vaultUseCase.SecretRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for secret repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return vaultRepository.NewPostgreSQLSecretRepository(db), nil
	case "mysql":
		return vaultRepository.NewMySQLSecretRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSecretVersionRepository creates the version repository based on the database driver.
func (c *Container) initSecretVersionRepository() (vaultUseCase.SecretVersionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for version repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return vaultRepository.NewPostgreSQLVersionRepository(db), nil
	case "mysql":
		return vaultRepository.NewMySQLVersionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initVaultUseCase creates the vault use case with all its dependencies.
// The access use case serves both as the access checker and the audit logger,
// and the key use case provides encryption key material.
func (c *Container) initVaultUseCase() (vaultUseCase.VaultUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for vault use case: %w", err)
	}

	secretRepo, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository for vault use case: %w", err)
	}

	versionRepo, err := c.SecretVersionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get version repository for vault use case: %w", err)
	}

	scheduleRepo, err := c.ScheduleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule repository for vault use case: %w", err)
	}

	accessUC, err := c.AccessUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get access use case for vault use case: %w", err)
	}

	keyUC, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for vault use case: %w", err)
	}

	baseUseCase := vaultUseCase.NewVaultUseCase(
		txManager,
		secretRepo,
		versionRepo,
		scheduleRepo,
		accessUC,
		accessUC,
		keyUC,
		cryptoService.NewAESCBC(),
		vaultService.NewValueGenerator(),
		c.SecretCache(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for vault use case: %w", err)
		}
		return vaultUseCase.NewVaultUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
