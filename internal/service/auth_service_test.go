package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-auth-tests-0123456789"

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		message string
	}{
		{
			name:    "missing field",
			mutate:  func(in *RegisterInput) { in.Email = "" },
			message: "All fields are required",
		},
		{
			name:    "password mismatch",
			mutate:  func(in *RegisterInput) { in.ConfirmPassword = "different" },
			message: "Passwords do not match",
		},
		{
			name:    "password too short",
			mutate:  func(in *RegisterInput) { in.Password = "abc"; in.ConfirmPassword = "abc" },
			message: "Password must be at least 6 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			repo := noopUserRepo()
			repo.createFn = func(_ context.Context, _ *models.User) error {
				created = true
				return nil
			}
			svc := NewAuthService(repo, testSecret)

			in := validRegisterInput()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			assertValidationError(t, err)
			assert.EqualError(t, err, tt.message)
			assert.False(t, created, "no row may be written on validation failure")
		})
	}
}

func TestRegister_Uniqueness(t *testing.T) {
	t.Run("email already registered", func(t *testing.T) {
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, Email: "alice@example.com"}, nil
		}
		svc := NewAuthService(repo, testSecret)

		_, err := svc.Register(context.Background(), validRegisterInput())
		assertAppErrorCode(t, err, "CONFLICT")
		assert.EqualError(t, err, "Email already registered")
	})

	t.Run("username already taken", func(t *testing.T) {
		repo := noopUserRepo()
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 2, Username: "alice"}, nil
		}
		svc := NewAuthService(repo, testSecret)

		_, err := svc.Register(context.Background(), validRegisterInput())
		assertAppErrorCode(t, err, "CONFLICT")
		assert.EqualError(t, err, "Username already taken")
	})
}

func TestRegister_HashesPassword(t *testing.T) {
	var stored *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		stored = u
		return nil
	}
	svc := NewAuthService(repo, testSecret)

	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))
	assert.Equal(t, "alice", user.Username)
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "known@example.com" {
			return &models.User{ID: 1, Email: email, Password: string(hash)}, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo, testSecret)

	_, unknownErr := svc.Login(context.Background(), "unknown@example.com", "whatever")
	_, wrongErr := svc.Login(context.Background(), "known@example.com", "wrong-password")

	assertAppErrorCode(t, unknownErr, "UNAUTHORIZED")
	assertAppErrorCode(t, wrongErr, "UNAUTHORIZED")
	assert.Equal(t, unknownErr.Error(), wrongErr.Error(), "unknown email and wrong password must be indistinguishable")
	assert.EqualError(t, unknownErr, "Invalid credentials")
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 42, Username: "alice", Email: email, Password: string(hash)}, nil
	}
	svc := NewAuthService(repo, testSecret)

	result, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.User.ID)
	assert.Equal(t, "alice", result.User.Username)

	parsed, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience(TokenAudience), jwt.WithIssuer(TokenIssuer))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "alice@example.com", claims["email"])
	assert.NotEmpty(t, claims["jti"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)
	assert.Equal(t, TokenTTL, exp.Sub(iat.Time))
}
