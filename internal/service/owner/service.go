package owner

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when username/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDisabled indicates no owner credentials are configured.
	ErrDisabled = errors.New("owner access not configured")
)

const passwordMin = 8

// Authenticator checks owner credentials against a configured bcrypt hash.
type Authenticator struct {
	username string
	hash     []byte
}

// New creates an Authenticator. Owner access stays disabled unless both the
// username and the hash are set.
func New(username, passwordHash string) *Authenticator {
	return &Authenticator{
		username: strings.TrimSpace(username),
		hash:     []byte(strings.TrimSpace(passwordHash)),
	}
}

func (a *Authenticator) Enabled() bool {
	return a != nil && a.username != "" && len(a.hash) > 0
}

// Authenticate verifies a username/password pair.
func (a *Authenticator) Authenticate(username, password string) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(a.username)) == 1
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil || !userOK {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces the value expected in OWNER_PASSWORD_HASH. The
// password is hashed exactly as given, surrounding spaces included.
func HashPassword(password string) (string, error) {
	if len(password) < passwordMin {
		return "", errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
