package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Token lifetimes
const (
	AccessTokenTTL  = 24 * time.Hour     // Access token lifetime
	RefreshTokenTTL = 7 * 24 * time.Hour // Refresh token lifetime
)

// Token type claim values
const (
	TokenTypeAccess  = "access"  // Access token type
	TokenTypeRefresh = "refresh" // Refresh token type
)

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"` // Custom claim for user ID
	TokenType            string `json:"typ"`     // Token type: access or refresh
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateTokenPair creates an access and refresh token for a given user ID
func GenerateTokenPair(userID uint, secret string) (string, string, error) {
	access, err := generateToken(userID, TokenTypeAccess, AccessTokenTTL, secret)
	if err != nil {
		return "", "", err // Return error if access token generation fails
	}
	refresh, err := generateToken(userID, TokenTypeRefresh, RefreshTokenTTL, secret)
	if err != nil {
		return "", "", err // Return error if refresh token generation fails
	}
	return access, refresh, nil // Return the token pair
}

// GenerateAccessToken creates a fresh access token for a given user ID
func GenerateAccessToken(userID uint, secret string) (string, error) {
	return generateToken(userID, TokenTypeAccess, AccessTokenTTL, secret)
}

// generateToken creates a signed JWT of the given type and lifetime
func generateToken(userID uint, tokenType string, ttl time.Duration, secret string) (string, error) {
	// Set token claims
	claims := Claims{
		UserID:    userID,    // Custom claim for user ID
		TokenType: tokenType, // Token type claim
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(time.Now()),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseAccessToken parses and validates an access token string
func ParseAccessToken(tokenStr, secret string) (*Claims, error) {
	return parseToken(tokenStr, secret, TokenTypeAccess)
}

// ParseRefreshToken parses and validates a refresh token string. Access tokens
// are rejected so a leaked short-lived token cannot be used to mint new ones.
func ParseRefreshToken(tokenStr, secret string) (*Claims, error) {
	return parseToken(tokenStr, secret, TokenTypeRefresh)
}

// parseToken parses a JWT and checks its type claim
func parseToken(tokenStr, secret, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid // Return error if token is invalid
	}
	// Reject tokens of the wrong type
	if claims.TokenType != wantType {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil // Return claims if valid
}
