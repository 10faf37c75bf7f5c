package app

import (
	"fmt"

	rotationRepository "github.com/keywell/vault/internal/rotation/repository"
	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
)

// ScheduleRepository returns the rotation schedule repository based on the database driver.
func (c *Container) ScheduleRepository() (rotationUseCase.ScheduleRepository, error) {
	var err error
	c.scheduleRepoInit.Do(func() {
		c.scheduleRepo, err = c.initScheduleRepository()
		if err != nil {
			c.initErrors["scheduleRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scheduleRepo"]; exists {
		return nil, storedErr
	}
	return c.scheduleRepo, nil
}

// SchedulerUseCase returns the rotation scheduler use case.
func (c *Container) SchedulerUseCase() (rotationUseCase.SchedulerUseCase, error) {
	var err error
	c.schedulerUseCaseInit.Do(func() {
		c.schedulerUseCase, err = c.initSchedulerUseCase()
		if err != nil {
			c.initErrors["schedulerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["schedulerUseCase"]; exists {
		return nil, storedErr
	}
	return c.schedulerUseCase, nil
}

// initScheduleRepository creates the schedule repository based on the database driver.
func (c *Container) initScheduleRepository() (rotationUseCase.ScheduleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for schedule repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rotationRepository.NewPostgreSQLScheduleRepository(db), nil
	case "mysql":
		return rotationRepository.NewMySQLScheduleRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSchedulerUseCase creates the scheduler use case with all its dependencies.
// The vault use case performs the actual rotations and the secret repository
// resolves scheduled secret ids back to secrets.
func (c *Container) initSchedulerUseCase() (rotationUseCase.SchedulerUseCase, error) {
	scheduleRepo, err := c.ScheduleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule repository for scheduler use case: %w", err)
	}

	vaultUC, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for scheduler use case: %w", err)
	}

	secretRepo, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository for scheduler use case: %w", err)
	}

	useCaseConfig := rotationUseCase.Config{
		Interval:             c.config.SchedulerInterval,
		StaleAfter:           c.config.RotationStaleAfter,
		EmergencyConcurrency: c.config.EmergencyRotateConcurrency,
	}

	baseUseCase := rotationUseCase.NewSchedulerUseCase(
		scheduleRepo,
		vaultUC,
		secretRepo,
		c.PatternMatcher(),
		useCaseConfig,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for scheduler use case: %w", err)
		}
		return rotationUseCase.NewSchedulerUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
