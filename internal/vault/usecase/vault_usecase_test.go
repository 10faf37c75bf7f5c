package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	cryptoService "github.com/keywell/vault/internal/crypto/service"
	databaseMocks "github.com/keywell/vault/internal/database/mocks"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	"github.com/keywell/vault/internal/vault/cache"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
	vaultService "github.com/keywell/vault/internal/vault/service"
	"github.com/keywell/vault/internal/vault/usecase/mocks"
)

type vaultFixture struct {
	txManager     *databaseMocks.MockTxManager
	secretRepo    *mocks.MockSecretRepository
	versionRepo   *mocks.MockSecretVersionRepository
	scheduleRepo  *mocks.MockScheduleRepository
	accessChecker *mocks.MockAccessChecker
	auditLogger   *mocks.MockAuditLogger
	keyProvider   *mocks.MockKeyProvider
	cache         *cache.SecretCache
	useCase       VaultUseCase
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()

	f := &vaultFixture{
		txManager:     new(databaseMocks.MockTxManager),
		secretRepo:    new(mocks.MockSecretRepository),
		versionRepo:   new(mocks.MockSecretVersionRepository),
		scheduleRepo:  new(mocks.MockScheduleRepository),
		accessChecker: new(mocks.MockAccessChecker),
		auditLogger:   new(mocks.MockAuditLogger),
		keyProvider:   new(mocks.MockKeyProvider),
		cache:         cache.NewSecretCache(5*time.Minute, slog.Default()),
	}
	f.useCase = NewVaultUseCase(
		f.txManager,
		f.secretRepo,
		f.versionRepo,
		f.scheduleRepo,
		f.accessChecker,
		f.auditLogger,
		f.keyProvider,
		cryptoService.NewAESCBC(),
		vaultService.NewValueGenerator(),
		f.cache,
		slog.Default(),
	)
	return f
}

func (f *vaultFixture) allowAll() {
	f.accessChecker.On("CheckAccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)
}

func (f *vaultFixture) swallowAudit() {
	f.auditLogger.On("RecordAccess", mock.Anything, mock.Anything).Return()
}

func (f *vaultFixture) withActiveKey(material []byte, version uint) {
	f.keyProvider.On("RetrieveActiveKey", mock.Anything).Return(&cryptoDomain.ActiveKey{
		Key:      cryptoDomain.EncryptionKey{ID: uuid.Must(uuid.NewV7()), Version: version},
		Material: material,
	}, nil)
	f.keyProvider.On("MaterialByVersion", mock.Anything, version).Return(material, nil)
}

func activeSecret(name string) *vaultDomain.Secret {
	return &vaultDomain.Secret{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           name,
		Type:           vaultDomain.SecretTypeDatabasePassword,
		CurrentVersion: 1,
		Status:         vaultDomain.SecretStatusActive,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

func encryptValue(t *testing.T, value, material []byte, keyVersion uint) cryptoDomain.EncryptedValue {
	t.Helper()
	encrypted, err := cryptoService.NewAESCBC().Encrypt(value, material, keyVersion)
	require.NoError(t, err)
	return encrypted
}

func versionRow(secretID uuid.UUID, number uint, encrypted cryptoDomain.EncryptedValue, current bool) *vaultDomain.SecretVersion {
	return &vaultDomain.SecretVersion{
		ID:            uuid.Must(uuid.NewV7()),
		SecretID:      secretID,
		VersionNumber: number,
		Ciphertext:    encrypted.Ciphertext,
		IV:            encrypted.IV,
		Salt:          encrypted.Salt,
		KeyVersion:    encrypted.KeyVersion,
		IsCurrent:     current,
		CreatedBy:     "u1",
		CreatedAt:     time.Now().UTC(),
	}
}

func TestVaultUseCase_CreateSecret(t *testing.T) {
	ctx := context.Background()
	actor := accessDomain.Actor{UserID: "u1"}
	material := make([]byte, 32)

	t.Run("CreatesVersionOneAndSchedulesRotation", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()
		f.withActiveKey(material, 1)

		f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		f.secretRepo.On("Create", mock.Anything, mock.MatchedBy(func(secret *vaultDomain.Secret) bool {
			return secret.CurrentVersion == 1 && secret.Status == vaultDomain.SecretStatusActive
		})).Return(nil).Once()
		f.versionRepo.On("Create", mock.Anything, mock.MatchedBy(func(version *vaultDomain.SecretVersion) bool {
			return version.VersionNumber == 1 && version.IsCurrent && version.KeyVersion == 1
		})).Return(nil).Once()
		f.scheduleRepo.On("GetOpenBySecret", mock.Anything, mock.Anything).
			Return(nil, rotationDomain.ErrScheduleNotFound).Once()
		f.scheduleRepo.On("Create", mock.Anything, mock.MatchedBy(func(schedule *rotationDomain.RotationSchedule) bool {
			due := time.Now().UTC().Add(30 * 24 * time.Hour)
			return schedule.RotationType == rotationDomain.RotationTypeAutomatic &&
				schedule.ScheduledAt.Sub(due) < time.Minute &&
				due.Sub(schedule.ScheduledAt) < time.Minute
		})).Return(nil).Once()

		secret, err := f.useCase.CreateSecret(ctx, SecretConfig{
			Name:                 "db_password",
			Type:                 vaultDomain.SecretTypeDatabasePassword,
			Value:                []byte("hunter2"),
			RotationEnabled:      true,
			RotationIntervalDays: 30,
		}, actor)

		require.NoError(t, err)
		assert.Equal(t, uint(1), secret.CurrentVersion)
		f.scheduleRepo.AssertExpectations(t)
	})

	t.Run("RejectsUnknownType", func(t *testing.T) {
		f := newVaultFixture(t)
		_, err := f.useCase.CreateSecret(ctx, SecretConfig{
			Name:  "x",
			Type:  vaultDomain.SecretType("pgp_key"),
			Value: []byte("v"),
		}, actor)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidSecretType)
	})

	t.Run("DeniedByPolicy", func(t *testing.T) {
		f := newVaultFixture(t)
		f.accessChecker.On("CheckAccess", mock.Anything, "db_password", accessDomain.OperationCreate, actor, mock.Anything).
			Return(false, nil).Once()
		f.auditLogger.On("RecordAccess", mock.Anything, mock.MatchedBy(func(entry *accessDomain.AccessLogEntry) bool {
			return !entry.Granted && entry.AccessType == accessDomain.OperationCreate
		})).Return().Once()

		_, err := f.useCase.CreateSecret(ctx, SecretConfig{
			Name:  "db_password",
			Type:  vaultDomain.SecretTypeGeneric,
			Value: []byte("v"),
		}, actor)

		assert.ErrorIs(t, err, accessDomain.ErrAccessDenied)
		f.secretRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.auditLogger.AssertExpectations(t)
	})
}

func TestVaultUseCase_GetSecret(t *testing.T) {
	ctx := context.Background()
	actor := accessDomain.Actor{UserID: "u1"}
	material := make([]byte, 32)

	t.Run("DecryptsCurrentVersionAndPopulatesCache", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()
		f.withActiveKey(material, 1)

		secret := activeSecret("db_password")
		encrypted := encryptValue(t, []byte("hunter2"), material, 1)

		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil)
		f.versionRepo.On("GetCurrent", mock.Anything, secret.ID).
			Return(versionRow(secret.ID, 1, encrypted, true), nil).Once()

		value, err := f.useCase.GetSecret(ctx, "db_password", actor, 0)

		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), value.Plaintext)
		assert.Equal(t, uint(1), value.Version)

		// Second read is served from cache; GetCurrent was Once().
		value, err = f.useCase.GetSecret(ctx, "db_password", actor, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), value.Plaintext)
		f.versionRepo.AssertExpectations(t)
	})

	t.Run("DeniedReadIsAuditLogged", func(t *testing.T) {
		f := newVaultFixture(t)
		secret := activeSecret("db_password")

		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.accessChecker.On("CheckAccess", mock.Anything, "db_password", accessDomain.OperationRead, actor, mock.Anything).
			Return(false, nil).Once()
		f.auditLogger.On("RecordAccess", mock.Anything, mock.MatchedBy(func(entry *accessDomain.AccessLogEntry) bool {
			return !entry.Granted && entry.AccessType == accessDomain.OperationRead
		})).Return().Once()

		_, err := f.useCase.GetSecret(ctx, "db_password", actor, 0)

		assert.ErrorIs(t, err, accessDomain.ErrAccessDenied)
		f.auditLogger.AssertExpectations(t)
	})

	t.Run("RejectsWhileNotActive", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		secret.Status = vaultDomain.SecretStatusRotating
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()

		_, err := f.useCase.GetSecret(ctx, "db_password", actor, 0)

		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotActive)
	})

	t.Run("DestroyedKeyVersionIsPermanentlyUnreadable", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		encrypted := encryptValue(t, []byte("hunter2"), material, 7)

		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil)
		f.versionRepo.On("GetCurrent", mock.Anything, secret.ID).
			Return(versionRow(secret.ID, 1, encrypted, true), nil)
		f.keyProvider.On("MaterialByVersion", mock.Anything, uint(7)).
			Return(nil, cryptoDomain.ErrKeyDestroyed)

		_, err := f.useCase.GetSecret(ctx, "db_password", actor, 0)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyDestroyed)

		// Must hold on retry
		_, err = f.useCase.GetSecret(ctx, "db_password", actor, 0)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyDestroyed)
	})
}

func TestVaultUseCase_UpdateSecret(t *testing.T) {
	ctx := context.Background()
	actor := accessDomain.Actor{UserID: "u1"}
	material := make([]byte, 32)

	t.Run("MonotonicVersionNumbers", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()
		f.withActiveKey(material, 1)

		secret := activeSecret("db_password")
		secret.CurrentVersion = 3

		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(true, nil).Once()
		f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		f.versionRepo.On("ClearCurrent", mock.Anything, secret.ID).Return(nil).Once()
		f.versionRepo.On("Create", mock.Anything, mock.MatchedBy(func(version *vaultDomain.SecretVersion) bool {
			return version.VersionNumber == 4 && version.IsCurrent
		})).Return(nil).Once()
		f.secretRepo.On("SetCurrentVersion", mock.Anything, secret.ID, uint(4)).Return(nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusRotating, vaultDomain.SecretStatusActive).
			Return(true, nil).Once()

		updated, err := f.useCase.UpdateSecret(ctx, "db_password", []byte("new value"), actor, "manual update")

		require.NoError(t, err)
		assert.Equal(t, uint(4), updated.CurrentVersion)
		f.secretRepo.AssertExpectations(t)
		f.versionRepo.AssertExpectations(t)
	})

	t.Run("RejectsRevokedSecret", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		secret.Status = vaultDomain.SecretStatusRevoked
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(false, nil).Once()

		_, err := f.useCase.UpdateSecret(ctx, "db_password", []byte("new value"), actor, "")

		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotActive)
		f.versionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RejectsWhileRotationHoldsLock", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(false, nil).Once()

		_, err := f.useCase.UpdateSecret(ctx, "db_password", []byte("new value"), actor, "")

		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotActive)
		f.versionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("InvalidatesCache", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()
		f.withActiveKey(material, 1)

		f.cache.Set(cache.Key("db_password", 0), []byte("stale"))

		secret := activeSecret("db_password")
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(true, nil).Once()
		f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		f.versionRepo.On("ClearCurrent", mock.Anything, secret.ID).Return(nil).Once()
		f.versionRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.secretRepo.On("SetCurrentVersion", mock.Anything, secret.ID, uint(2)).Return(nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusRotating, vaultDomain.SecretStatusActive).
			Return(true, nil).Once()

		_, err := f.useCase.UpdateSecret(ctx, "db_password", []byte("fresh"), actor, "")

		require.NoError(t, err)
		_, ok := f.cache.Get(cache.Key("db_password", 0))
		assert.False(t, ok)
	})
}

func TestVaultUseCase_RotateSecret(t *testing.T) {
	ctx := context.Background()
	actor := accessDomain.Actor{UserID: "u1"}
	material := make([]byte, 32)

	t.Run("Success", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()
		f.withActiveKey(material, 1)

		secret := activeSecret("db_password")
		secret.RotationEnabled = true
		secret.RotationIntervalDays = 30

		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(true, nil).Once()
		f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		f.versionRepo.On("ClearCurrent", mock.Anything, secret.ID).Return(nil).Once()
		f.versionRepo.On("Create", mock.Anything, mock.MatchedBy(func(version *vaultDomain.SecretVersion) bool {
			return version.VersionNumber == 2 && version.ChangeReason != nil &&
				*version.ChangeReason == "Automatic rotation"
		})).Return(nil).Once()
		f.secretRepo.On("SetCurrentVersion", mock.Anything, secret.ID, uint(2)).Return(nil).Once()
		f.scheduleRepo.On("GetOpenBySecret", mock.Anything, secret.ID).
			Return(nil, rotationDomain.ErrScheduleNotFound).Once()
		f.scheduleRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusRotating, vaultDomain.SecretStatusActive).
			Return(true, nil).Once()

		rotated, err := f.useCase.RotateSecret(ctx, "db_password", actor)

		require.NoError(t, err)
		assert.Equal(t, uint(2), rotated.CurrentVersion)
		f.secretRepo.AssertExpectations(t)
		f.scheduleRepo.AssertExpectations(t)
	})

	t.Run("LostLockRaceRejects", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(false, nil).Once()

		_, err := f.useCase.RotateSecret(ctx, "db_password", actor)

		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotActive)
		f.versionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("FailureReleasesLockWithoutNewVersion", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()
		f.withActiveKey(material, 1)

		secret := activeSecret("db_password")
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(true, nil).Once()
		f.txManager.On("WithTx", mock.Anything, mock.Anything).
			Return(rotationDomain.ErrRotationFailed).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusRotating, vaultDomain.SecretStatusActive).
			Return(true, nil).Once()

		_, err := f.useCase.RotateSecret(ctx, "db_password", actor)

		assert.Error(t, err)
		assert.Equal(t, uint(1), secret.CurrentVersion)
		f.secretRepo.AssertExpectations(t)
	})
}

func TestVaultUseCase_RevokeSecret(t *testing.T) {
	ctx := context.Background()
	actor := accessDomain.Actor{UserID: "u1"}

	t.Run("RevokedSecretRejectsReads", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil)
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRevoked).
			Return(true, nil).Once()

		require.NoError(t, f.useCase.RevokeSecret(ctx, "db_password", actor))

		secret.Status = vaultDomain.SecretStatusRevoked
		_, err := f.useCase.GetSecret(ctx, "db_password", actor, 0)
		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotActive)
	})

	t.Run("RevokedCannotBeRevokedAgain", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()

		secret := activeSecret("db_password")
		secret.Status = vaultDomain.SecretStatusRevoked
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()

		err := f.useCase.RevokeSecret(ctx, "db_password", actor)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidTransition)
	})
}

func TestVaultUseCase_RollbackSecret(t *testing.T) {
	ctx := context.Background()
	actor := accessDomain.Actor{UserID: "u1"}
	material := make([]byte, 32)

	t.Run("RollbackIsAForwardUpdate", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()
		f.withActiveKey(material, 1)

		secret := activeSecret("db_password")
		secret.CurrentVersion = 3
		oldValue := []byte("the old password")
		encrypted := encryptValue(t, oldValue, material, 1)

		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(true, nil).Once()
		f.versionRepo.On("GetByNumber", mock.Anything, secret.ID, uint(1)).
			Return(versionRow(secret.ID, 1, encrypted, false), nil).Once()
		f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		f.versionRepo.On("ClearCurrent", mock.Anything, secret.ID).Return(nil).Once()
		f.versionRepo.On("Create", mock.Anything, mock.MatchedBy(func(version *vaultDomain.SecretVersion) bool {
			return version.VersionNumber == 4 && version.ChangeReason != nil &&
				*version.ChangeReason == "Rollback to version 1"
		})).Return(nil).Once()
		f.secretRepo.On("SetCurrentVersion", mock.Anything, secret.ID, uint(4)).Return(nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusRotating, vaultDomain.SecretStatusActive).
			Return(true, nil).Once()

		rolled, err := f.useCase.RollbackSecret(ctx, "db_password", 1, actor)

		require.NoError(t, err)
		assert.Equal(t, uint(4), rolled.CurrentVersion)
		f.secretRepo.AssertExpectations(t)
		f.versionRepo.AssertExpectations(t)
	})

	t.Run("MissingTargetVersion", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(true, nil).Once()
		f.versionRepo.On("GetByNumber", mock.Anything, secret.ID, uint(9)).
			Return(nil, vaultDomain.ErrVersionNotFound).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusRotating, vaultDomain.SecretStatusActive).
			Return(true, nil).Once()

		_, err := f.useCase.RollbackSecret(ctx, "db_password", 9, actor)
		assert.ErrorIs(t, err, vaultDomain.ErrVersionNotFound)
	})

	t.Run("RejectsRevokedSecret", func(t *testing.T) {
		f := newVaultFixture(t)
		f.allowAll()
		f.swallowAudit()

		secret := activeSecret("db_password")
		secret.Status = vaultDomain.SecretStatusRevoked
		f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
		f.secretRepo.On("TransitionStatus", mock.Anything, secret.ID, vaultDomain.SecretStatusActive, vaultDomain.SecretStatusRotating).
			Return(false, nil).Once()

		_, err := f.useCase.RollbackSecret(ctx, "db_password", 1, actor)

		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotActive)
		f.versionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestVaultUseCase_DeniedMutationsAreAuditLogged(t *testing.T) {
	ctx := context.Background()
	actor := accessDomain.Actor{UserID: "u1"}

	tests := []struct {
		name      string
		operation accessDomain.Operation
		invoke    func(f *vaultFixture) error
	}{
		{
			name:      "Create",
			operation: accessDomain.OperationCreate,
			invoke: func(f *vaultFixture) error {
				_, err := f.useCase.CreateSecret(ctx, SecretConfig{
					Name:  "db_password",
					Type:  vaultDomain.SecretTypeGeneric,
					Value: []byte("v"),
				}, actor)
				return err
			},
		},
		{
			name:      "Update",
			operation: accessDomain.OperationUpdate,
			invoke: func(f *vaultFixture) error {
				_, err := f.useCase.UpdateSecret(ctx, "db_password", []byte("v"), actor, "")
				return err
			},
		},
		{
			name:      "Rotate",
			operation: accessDomain.OperationRotate,
			invoke: func(f *vaultFixture) error {
				_, err := f.useCase.RotateSecret(ctx, "db_password", actor)
				return err
			},
		},
		{
			name:      "Revoke",
			operation: accessDomain.OperationRevoke,
			invoke: func(f *vaultFixture) error {
				return f.useCase.RevokeSecret(ctx, "db_password", actor)
			},
		},
		{
			// Rollback authorizes as an update.
			name:      "Rollback",
			operation: accessDomain.OperationUpdate,
			invoke: func(f *vaultFixture) error {
				_, err := f.useCase.RollbackSecret(ctx, "db_password", 1, actor)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVaultFixture(t)
			f.accessChecker.On("CheckAccess", mock.Anything, "db_password", tt.operation, actor, mock.Anything).
				Return(false, nil).Once()
			f.auditLogger.On("RecordAccess", mock.Anything, mock.MatchedBy(func(entry *accessDomain.AccessLogEntry) bool {
				return !entry.Granted &&
					entry.AccessType == tt.operation &&
					entry.SecretName == "db_password" &&
					entry.AccessedBy == "u1"
			})).Return().Once()

			err := tt.invoke(f)

			assert.ErrorIs(t, err, accessDomain.ErrAccessDenied)
			f.auditLogger.AssertExpectations(t)
			f.secretRepo.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
		})
	}
}

func TestVaultUseCase_GetSecretVersions(t *testing.T) {
	ctx := context.Background()
	material := make([]byte, 32)

	f := newVaultFixture(t)
	secret := activeSecret("db_password")
	encrypted := encryptValue(t, []byte("v"), material, 1)

	f.secretRepo.On("GetByName", mock.Anything, "db_password").Return(secret, nil).Once()
	f.versionRepo.On("ListBySecret", mock.Anything, secret.ID).Return([]*vaultDomain.SecretVersion{
		versionRow(secret.ID, 2, encrypted, true),
		versionRow(secret.ID, 1, encrypted, false),
	}, nil).Once()

	versions, err := f.useCase.GetSecretVersions(ctx, "db_password")

	require.NoError(t, err)
	require.Len(t, versions, 2)
	for _, version := range versions {
		assert.Nil(t, version.Ciphertext)
		assert.Nil(t, version.IV)
		assert.Nil(t, version.Salt)
	}
}
