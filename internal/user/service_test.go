package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/user"
)

func TestServiceRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params user.RegisterParams
		setup  func(repo *user.MockRepository)
		check  func(t *testing.T, u *user.User, err error)
	}{
		{
			name: "hashes the password and lowercases the email",
			params: user.RegisterParams{
				Email:    "Ana@Example.COM",
				Password: "correct horse",
				FullName: "Ana Reis",
			},
			setup: func(repo *user.MockRepository) {
				repo.EXPECT().
					GetUserByEmail(gomock.Any(), "ana@example.com").
					Return(nil, user.ErrNotFound)
				repo.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			check: func(t *testing.T, u *user.User, err error) {
				require.NoError(t, err)
				assert.Equal(t, "ana@example.com", u.Email)
				assert.Equal(t, "USD", u.Currency)
				assert.NotEqual(t, "correct horse", u.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))
			},
		},
		{
			name: "rejects a taken email",
			params: user.RegisterParams{
				Email:    "ana@example.com",
				Password: "correct horse",
			},
			setup: func(repo *user.MockRepository) {
				repo.EXPECT().
					GetUserByEmail(gomock.Any(), "ana@example.com").
					Return(&user.User{Email: "ana@example.com"}, nil)
			},
			check: func(t *testing.T, _ *user.User, err error) {
				assert.ErrorIs(t, err, user.ErrEmailTaken)
			},
		},
		{
			name: "rejects a short password",
			params: user.RegisterParams{
				Email:    "ana@example.com",
				Password: "short",
			},
			setup: func(_ *user.MockRepository) {},
			check: func(t *testing.T, _ *user.User, err error) {
				var verr *billing.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "password", verr.Field)
			},
		},
		{
			name: "rejects an unknown currency",
			params: user.RegisterParams{
				Email:    "ana@example.com",
				Password: "correct horse",
				Currency: "WAT",
			},
			setup: func(_ *user.MockRepository) {},
			check: func(t *testing.T, _ *user.User, err error) {
				var verr *billing.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "currency", verr.Field)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := user.NewMockRepository(ctrl)
			tt.setup(repo)

			u, err := user.NewService(repo).Register(context.Background(), tt.params)
			tt.check(t, u, err)
		})
	}
}

func TestServiceAuthenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		PasswordHash: string(hash),
	}

	t.Run("matches valid credentials", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)
		repo.EXPECT().
			GetUserByEmail(gomock.Any(), "ana@example.com").
			Return(stored, nil)

		got, err := user.NewService(repo).Authenticate(context.Background(), "Ana@example.com ", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)
		repo.EXPECT().
			GetUserByEmail(gomock.Any(), "ana@example.com").
			Return(stored, nil)

		_, err := user.NewService(repo).Authenticate(context.Background(), "ana@example.com", "tr0ub4dor")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown email reports the same error", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)
		repo.EXPECT().
			GetUserByEmail(gomock.Any(), "nobody@example.com").
			Return(nil, user.ErrNotFound)

		_, err := user.NewService(repo).Authenticate(context.Background(), "nobody@example.com", "correct horse")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}
