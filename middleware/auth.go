package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bistro-api/models"
	"bistro-api/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an identity token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserLookup resolves the user record behind a verified identity.
type UserLookup interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Auth issues identity tokens and gates requests on them.
type Auth struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
	now    func() time.Time
}

const claimsKey = "claims"

var errMissingEmail = errors.New("token carries no email claim")

func NewAuth(secret []byte, ttl time.Duration, users UserLookup) *Auth {
	return &Auth{
		secret: secret,
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// IssueToken signs an HS256 token for email that expires after the configured ttl.
// Callers are responsible for having authenticated the email first.
func (a *Auth) IssueToken(email string) (string, error) {
	now := a.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, algorithm and expiry and returns the claims.
func (a *Auth) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Email == "" {
		return nil, errMissingEmail
	}
	return claims, nil
}

// VerifyIdentity requires a valid bearer token and stores its claims in the context.
func (a *Auth) VerifyIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenStr == "" {
			unauthorized(c)
			return
		}
		claims, err := a.ParseToken(tokenStr)
		if err != nil {
			logger.Debugf("rejected token on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			unauthorized(c)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// VerifyAdmin requires the identity set by VerifyIdentity to belong to an admin user.
func (a *Auth) VerifyAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := EmailFrom(c)
		if email == "" {
			unauthorized(c)
			return
		}
		user, err := a.users.FindUserByEmail(c.Request.Context(), email)
		if errors.Is(err, store.ErrNotFound) {
			forbidden(c)
			return
		}
		if err != nil {
			logger.Errorf("admin lookup for %s: %v", email, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify role"})
			return
		}
		if !user.IsAdmin() {
			forbidden(c)
			return
		}
		c.Next()
	}
}

// EmailMatch writes 403 and returns false unless target is the caller's own email.
func EmailMatch(c *gin.Context, target string) bool {
	if target == "" || target != EmailFrom(c) {
		forbidden(c)
		return false
	}
	return true
}

// ClaimsFrom returns the claims VerifyIdentity stored, if any.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// EmailFrom returns the verified caller email, or "" on unauthenticated requests.
func EmailFrom(c *gin.Context) string {
	if claims, ok := ClaimsFrom(c); ok {
		return claims.Email
	}
	return ""
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "unauthorized access"})
}

func forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": true, "message": "forbidden access"})
}
