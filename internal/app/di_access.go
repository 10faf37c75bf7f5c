package app

import (
	"fmt"

	accessRepository "github.com/keywell/vault/internal/access/repository"
	accessService "github.com/keywell/vault/internal/access/service"
	accessUseCase "github.com/keywell/vault/internal/access/usecase"
)

// PolicyRepository returns the access policy repository based on the database driver.
func (c *Container) PolicyRepository() (accessUseCase.PolicyRepository, error) {
	var err error
	c.policyRepoInit.Do(func() {
		c.policyRepo, err = c.initPolicyRepository()
		if err != nil {
			c.initErrors["policyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyRepo"]; exists {
		return nil, storedErr
	}
	return c.policyRepo, nil
}

// AccessLogRepository returns the access log repository based on the database driver.
func (c *Container) AccessLogRepository() (accessUseCase.AccessLogRepository, error) {
	var err error
	c.accessLRepoInit.Do(func() {
		c.accessLRepo, err = c.initAccessLogRepository()
		if err != nil {
			c.initErrors["accessLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessLogRepo"]; exists {
		return nil, storedErr
	}
	return c.accessLRepo, nil
}

// PatternMatcher returns the glob pattern matcher shared by the policy engine
// and the rotation scheduler.
func (c *Container) PatternMatcher() accessService.PatternMatcher {
	c.patternMatcherInit.Do(func() {
		c.patternMatcher = accessService.NewPatternMatcher()
	})
	return c.patternMatcher
}

// AccessUseCase returns the access control use case.
func (c *Container) AccessUseCase() (accessUseCase.AccessUseCase, error) {
	var err error
	c.accessUseCaseInit.Do(func() {
		c.accessUseCase, err = c.initAccessUseCase()
		if err != nil {
			c.initErrors["accessUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessUseCase"]; exists {
		return nil, storedErr
	}
	return c.accessUseCase, nil
}

// initPolicyRepository creates the policy repository based on the database driver.
func (c *Container) initPolicyRepository() (accessUseCase.PolicyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for policy repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return accessRepository.NewPostgreSQLPolicyRepository(db), nil
	case "mysql":
		return accessRepository.NewMySQLPolicyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAccessLogRepository creates the access log repository based on the database driver.
func (c *Container) initAccessLogRepository() (accessUseCase.AccessLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for access log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return accessRepository.NewPostgreSQLAccessLogRepository(db), nil
	case "mysql":
		return accessRepository.NewMySQLAccessLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAccessUseCase creates the access use case with all its dependencies.
func (c *Container) initAccessUseCase() (accessUseCase.AccessUseCase, error) {
	policyRepo, err := c.PolicyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy repository for access use case: %w", err)
	}

	logRepo, err := c.AccessLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get access log repository for access use case: %w", err)
	}

	baseUseCase := accessUseCase.NewAccessUseCase(policyRepo, logRepo, c.PatternMatcher(), c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for access use case: %w", err)
		}
		return accessUseCase.NewAccessUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
