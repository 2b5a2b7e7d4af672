package service

import (
	"crypto/subtle"
	"errors"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthService checks the single admin account held in configuration.
type AuthService struct {
	Admin config.AdminConfig
	JWT   config.JWTConfig
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		Admin: cfg.Admin,
		JWT:   cfg.JWT,
	}
}

// Login returns a signed admin token for valid credentials.
func (s *AuthService) Login(username, password string) (string, error) {
	if !s.Admin.Configured() {
		return "", util.ErrAdminNotConfigured
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Admin.Username)) == 1
	// Always run bcrypt so a wrong username costs as much as a wrong password.
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.Admin.PasswordHash), []byte(password))
	if !userOK || pwErr != nil {
		if pwErr != nil && !errors.Is(pwErr, bcrypt.ErrMismatchedHashAndPassword) {
			return "", errors.Join(util.ErrInvalidCredentials, pwErr)
		}
		return "", util.ErrInvalidCredentials
	}

	return util.GenerateJWT(s.Admin.Username, s.JWT.Secret, s.JWT.ExpireTime)
}

// HashPassword is used by --setup-admin to produce admin.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
