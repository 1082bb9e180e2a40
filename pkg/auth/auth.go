package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/elfworks/santa-api-go/pkg/storage"
)

var jwtAlgorithm = jwt.SigningMethodHS256

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func linkSecret() []byte {
	return []byte(os.Getenv("LINK_SECRET"))
}

// Claims represents the JWT claims for the site admin
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for an admin user
func CreateToken(username string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(jwtSecret())
}

// VerifyToken verifies a JWT token
func VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// OrganizerToken mints the management token for a group, issued once at
// creation. The token is HMAC-SHA256 over the group code, so it can be
// re-derived with cmd/keygen when an organizer loses theirs.
func OrganizerToken(groupCode string) string {
	h := hmac.New(sha256.New, linkSecret())
	h.Write([]byte(groupCode))
	signature := hex.EncodeToString(h.Sum(nil))
	return groupCode + "." + signature
}

// VerifyOrganizerToken validates an organizer token against a group code
func VerifyOrganizerToken(groupCode, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return errors.New("invalid token format")
	}
	if parts[0] != groupCode {
		return errors.New("token does not match group")
	}

	h := hmac.New(sha256.New, linkSecret())
	h.Write([]byte(groupCode))
	expectedSignature := hex.EncodeToString(h.Sum(nil))

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(parts[1]), []byte(expectedSignature)) {
		return errors.New("invalid signature")
	}

	return nil
}

// EnsureAdminExists creates the site admin account from environment
// variables when no admin exists yet.
func EnsureAdminExists(ctx context.Context, store storage.Store) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return store.EnsureAdmin(ctx, username, hash)
}
