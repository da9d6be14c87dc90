package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/police-dashboard/internal/auth"
	"github.com/spec-kit/police-dashboard/internal/config"
	"github.com/spec-kit/police-dashboard/internal/domain"
	apperrors "github.com/spec-kit/police-dashboard/pkg/util"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// recordingRevocations captures revoked subjects for assertions.
type recordingRevocations struct {
	revoked map[string]time.Duration
}

func newRecordingRevocations() *recordingRevocations {
	return &recordingRevocations{revoked: make(map[string]time.Duration)}
}

func (r *recordingRevocations) Revoke(_ context.Context, subject string, ttl time.Duration) error {
	r.revoked[subject] = ttl
	return nil
}

func (r *recordingRevocations) IsRevoked(_ context.Context, subject string) (bool, error) {
	_, ok := r.revoked[subject]
	return ok, nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 24,
			BcryptCost:    bcrypt.MinCost,
		},
		Bootstrap: config.BootstrapConfig{AdminPassword: config.DefaultAdminPassword},
	}
}

func newTestService(repo *MockAccountRepository, revocations auth.RevocationStore) *AccountService {
	return NewAccountService(testConfig(), AccountDependencies{
		AccountRepo: repo,
		Revocations: revocations,
	})
}

func registerInput() RegisterInput {
	return RegisterInput{
		Username:   "bob",
		Email:      "bob@x.com",
		Password:   "pw123456",
		FullName:   "Bob Officer",
		Phone:      "+91-9876500000",
		Department: "Traffic",
		Rank:       "Constable",
		StationID:  "ST001",
		Role:       domain.RoleOfficer,
	}
}

func domainErrCode(t *testing.T, err error) string {
	t.Helper()
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	return domainErr.Code
}

func TestAccountService_Register(t *testing.T) {
	tests := []struct {
		name         string
		setupMock    func(*MockAccountRepository)
		expectedCode string
	}{
		{
			name: "successful registration",
			setupMock: func(m *MockAccountRepository) {
				m.On("GetByUsername", mock.Anything, "bob").Return(nil, pgx.ErrNoRows)
				m.On("GetByEmail", mock.Anything, "bob@x.com").Return(nil, pgx.ErrNoRows)
				m.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil)
			},
		},
		{
			name: "username already registered",
			setupMock: func(m *MockAccountRepository) {
				m.On("GetByUsername", mock.Anything, "bob").Return(&domain.Account{Username: "bob"}, nil)
			},
			expectedCode: "CONFLICT",
		},
		{
			name: "email already registered",
			setupMock: func(m *MockAccountRepository) {
				m.On("GetByUsername", mock.Anything, "bob").Return(nil, pgx.ErrNoRows)
				m.On("GetByEmail", mock.Anything, "bob@x.com").Return(&domain.Account{Email: "bob@x.com"}, nil)
			},
			expectedCode: "CONFLICT",
		},
		{
			name: "racing insert loses as conflict",
			setupMock: func(m *MockAccountRepository) {
				m.On("GetByUsername", mock.Anything, "bob").Return(nil, pgx.ErrNoRows)
				m.On("GetByEmail", mock.Anything, "bob@x.com").Return(nil, pgx.ErrNoRows)
				m.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
					Return(apperrors.NewConflict("username already registered", map[string]any{"field": "username"}))
			},
			expectedCode: "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			tt.setupMock(mockRepo)

			svc := newTestService(mockRepo, nil)
			account, err := svc.Register(context.Background(), registerInput())

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, domainErrCode(t, err))
				assert.Nil(t, account)
			} else {
				require.NoError(t, err)
				require.NotNil(t, account)
				assert.True(t, account.IsActive)
				assert.Nil(t, account.LastLogin)
				assert.NotEqual(t, "pw123456", account.PasswordHash)
				assert.True(t, auth.VerifyPassword("pw123456", account.PasswordHash))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAccountService_Login(t *testing.T) {
	hash, err := auth.HashPassword("pw123456", bcrypt.MinCost)
	require.NoError(t, err)

	storedAccount := func(active bool) *domain.Account {
		return &domain.Account{
			ID:           "11111111-1111-1111-1111-111111111111",
			Username:     "bob",
			PasswordHash: hash,
			Role:         domain.RoleOfficer,
			IsActive:     active,
		}
	}

	t.Run("successful login issues token and records last login", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByUsername", mock.Anything, "bob").Return(storedAccount(true), nil)
		mockRepo.On("UpdateLastLogin", mock.Anything, "11111111-1111-1111-1111-111111111111", mock.AnythingOfType("time.Time")).Return(nil)

		svc := newTestService(mockRepo, nil)
		account, token, expiresAt, err := svc.Login(context.Background(), "bob", "pw123456")

		require.NoError(t, err)
		require.NotNil(t, account)
		require.NotNil(t, account.LastLogin)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

		subject, err := svc.TokenManager().Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "bob", subject)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown username and wrong password are indistinguishable", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, pgx.ErrNoRows)
		mockRepo.On("GetByUsername", mock.Anything, "bob").Return(storedAccount(true), nil)

		svc := newTestService(mockRepo, nil)
		_, _, _, unknownErr := svc.Login(context.Background(), "ghost", "pw123456")
		_, _, _, wrongPwErr := svc.Login(context.Background(), "bob", "wrong-password")

		unknown := apperrors.ToDomainError(unknownErr)
		wrongPw := apperrors.ToDomainError(wrongPwErr)
		assert.Equal(t, "UNAUTHORIZED", unknown.Code)
		assert.Equal(t, unknown.Code, wrongPw.Code)
		assert.Equal(t, unknown.Message, wrongPw.Message)
		assert.Equal(t, unknown.HTTPStatus, wrongPw.HTTPStatus)
	})

	t.Run("deactivated account with correct password is forbidden", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByUsername", mock.Anything, "bob").Return(storedAccount(false), nil)

		svc := newTestService(mockRepo, nil)
		_, _, _, err := svc.Login(context.Background(), "bob", "pw123456")

		assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
	})
}

func TestAccountService_Deactivate(t *testing.T) {
	target := &domain.Account{
		ID:       "22222222-2222-2222-2222-222222222222",
		Username: "carol",
		Role:     domain.RoleOfficer,
		IsActive: true,
	}

	t.Run("deactivates and revokes the subject", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		mockRepo.On("SetActive", mock.Anything, target.ID, false).Return(nil)

		revocations := newRecordingRevocations()
		svc := newTestService(mockRepo, revocations)
		admin := &domain.Account{Username: "admin", Role: domain.RoleAdmin}

		require.NoError(t, svc.Deactivate(context.Background(), admin, target.ID))
		assert.Equal(t, 24*time.Hour, revocations.revoked["carol"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown target is not found", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByID", mock.Anything, "33333333-3333-3333-3333-333333333333").Return(nil, pgx.ErrNoRows)

		svc := newTestService(mockRepo, nil)
		err := svc.Deactivate(context.Background(), nil, "33333333-3333-3333-3333-333333333333")

		assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
	})
}

func TestAccountService_EnsureDefaultAdmin(t *testing.T) {
	t.Run("creates admin when absent", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByUsername", mock.Anything, "admin").Return(nil, pgx.ErrNoRows)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(account *domain.Account) bool {
			return account.Username == "admin" && account.Role == domain.RoleAdmin && account.IsActive
		})).Return(nil)

		svc := newTestService(mockRepo, nil)
		require.NoError(t, svc.EnsureDefaultAdmin(context.Background()))
		mockRepo.AssertExpectations(t)
	})

	t.Run("is idempotent when admin exists", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByUsername", mock.Anything, "admin").Return(&domain.Account{Username: "admin"}, nil)

		svc := newTestService(mockRepo, nil)
		require.NoError(t, svc.EnsureDefaultAdmin(context.Background()))
		require.NoError(t, svc.EnsureDefaultAdmin(context.Background()))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("tolerates losing the bootstrap race", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("GetByUsername", mock.Anything, "admin").Return(nil, pgx.ErrNoRows)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
			Return(apperrors.NewConflict("username already registered", map[string]any{"field": "username"}))

		svc := newTestService(mockRepo, nil)
		require.NoError(t, svc.EnsureDefaultAdmin(context.Background()))
	})
}
