package app

import (
	"fmt"

	cryptoRepository "github.com/keywell/vault/internal/crypto/repository"
	cryptoService "github.com/keywell/vault/internal/crypto/service"
	cryptoUseCase "github.com/keywell/vault/internal/crypto/usecase"
)

// KeyRepository returns the encryption key repository based on the database driver.
func (c *Container) KeyRepository() (cryptoUseCase.KeyRepository, error) {
	var err error
	c.keyRepoInit.Do(func() {
		c.keyRepo, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepo"]; exists {
		return nil, storedErr
	}
	return c.keyRepo, nil
}

// MaterialRepository returns the wrapped key material repository.
func (c *Container) MaterialRepository() (cryptoService.MaterialRepository, error) {
	var err error
	c.materialRepoInit.Do(func() {
		c.materialRepo, err = c.initMaterialRepository()
		if err != nil {
			c.initErrors["materialRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["materialRepo"]; exists {
		return nil, storedErr
	}
	return c.materialRepo, nil
}

// MaterialStore returns the keeper-backed key material store.
func (c *Container) MaterialStore() (cryptoService.KeyMaterialStore, error) {
	var err error
	c.materialStoreInit.Do(func() {
		c.materialStore, err = c.initMaterialStore()
		if err != nil {
			c.initErrors["materialStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["materialStore"]; exists {
		return nil, storedErr
	}
	return c.materialStore, nil
}

// KeyUseCase returns the encryption key lifecycle use case.
func (c *Container) KeyUseCase() (cryptoUseCase.KeyUseCase, error) {
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

// KeyMonitor returns the background key expiry monitor.
func (c *Container) KeyMonitor() (*cryptoUseCase.KeyMonitor, error) {
	var err error
	c.keyMonitorInit.Do(func() {
		c.keyMonitor, err = c.initKeyMonitor()
		if err != nil {
			c.initErrors["keyMonitor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyMonitor"]; exists {
		return nil, storedErr
	}
	return c.keyMonitor, nil
}

// initKeyRepository creates the key repository based on the database driver.
func (c *Container) initKeyRepository() (cryptoUseCase.KeyRepository, error) {
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

// initMaterialRepository creates the material repository based on the database driver.
func (c *Container) initMaterialRepository() (cryptoService.MaterialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for material repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLMaterialRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLMaterialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initMaterialStore creates the key material store backed by the keeper.
func (c *Container) initMaterialStore() (cryptoService.KeyMaterialStore, error) {
	keeper, err := c.Keeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get keeper for material store: %w", err)
	}

	materialRepo, err := c.MaterialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get material repository for material store: %w", err)
	}

	return cryptoService.NewKeeperMaterialStore(keeper, materialRepo), nil
}

// initKeyUseCase creates the key use case with all its dependencies.
func (c *Container) initKeyUseCase() (cryptoUseCase.KeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key use case: %w", err)
	}

	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key use case: %w", err)
	}

	materialStore, err := c.MaterialStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get material store for key use case: %w", err)
	}

	useCaseConfig := cryptoUseCase.Config{
		KeyExpiry:        c.config.KeyExpiry,
		DeprecationDelay: c.config.KeyDeprecationDelay,
	}

	baseUseCase := cryptoUseCase.NewKeyUseCase(useCaseConfig, txManager, keyRepo, materialStore)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		return cryptoUseCase.NewKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyMonitor creates the key expiry monitor with all its dependencies.
func (c *Container) initKeyMonitor() (*cryptoUseCase.KeyMonitor, error) {
	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for key monitor: %w", err)
	}

	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key monitor: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key monitor: %w", err)
	}

	monitorConfig := cryptoUseCase.MonitorConfig{
		Interval:      c.config.KeyMonitorInterval,
		ExpiryWarning: c.config.KeyExpiryWarning,
	}

	return cryptoUseCase.NewKeyMonitor(monitorConfig, keyUseCase, keyRepo, businessMetrics, c.Logger()), nil
}
