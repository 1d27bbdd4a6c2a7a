package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/config"
)

const (
	ContextKeyToken  = "auth_token"
	ContextKeyUserID = "auth_user_id"
	ContextKeyRoles  = "auth_roles"

	RoleAdmin = "admin"
)

// Validator validates bearer JWTs signed with a shared HS256 secret or by a JWKS issuer.
type Validator struct {
	cfg    *config.Config
	log    zerolog.Logger
	jwks   *keyfunc.JWKS
	secret []byte
}

// NewValidator initializes JWKS fetching when auth is enabled with a JWKS URL.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{cfg: cfg, log: log.With().Str("component", "auth").Logger()}
	if !cfg.AuthEnabled {
		return v, nil
	}
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		v.secret = []byte(secret)
	}
	if cfg.AuthJWKSURL == "" {
		return v, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}
	v.jwks = jwks
	return v, nil
}

func (v *Validator) keyfunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if v.secret == nil {
			return nil, fmt.Errorf("HMAC tokens are not accepted")
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, fmt.Errorf("no JWKS configured for %s tokens", token.Method.Alg())
	}
	return v.jwks.Keyfunc(token)
}

func (v *Validator) parserOptions() []jwt.ParserOption {
	methods := []string{}
	if v.secret != nil {
		methods = append(methods, "HS256")
	}
	if v.jwks != nil {
		methods = append(methods, "RS256", "RS384", "RS512")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods(methods)}
	if issuer := strings.TrimSpace(v.cfg.AuthIssuer); issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience := strings.TrimSpace(v.cfg.AuthAudience); audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}

// Middleware enforces JWT auth when enabled and exposes the subject and roles
// on the gin context.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, v.keyfunc, v.parserOptions()...)
		if err != nil || !token.Valid {
			v.log.Debug().Err(err).Msg("token rejected")
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		subject, _ := claims.GetSubject()
		c.Set(ContextKeyToken, token)
		c.Set(ContextKeyUserID, subject)
		c.Set(ContextKeyRoles, rolesFromClaims(claims))
		c.Next()
	}
}

// RequireRole rejects authenticated callers that lack role. It is a no-op
// when auth is disabled.
func (v *Validator) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil || !v.cfg.AuthEnabled {
			c.Next()
			return
		}
		for _, r := range Roles(c) {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": fmt.Sprintf("Required role(s) missing: %s", role),
		})
	}
}

// Ready indicates if the validator is prepared.
func (v *Validator) Ready() bool {
	if v == nil || !v.cfg.AuthEnabled {
		return true
	}
	return v.jwks != nil || v.secret != nil
}

type identityKey struct{}

type identity struct {
	userID string
	roles  []string
}

// WithIdentity carries the caller onto ctx so that tools dispatched in
// process see the same subject and roles as the outer request.
func WithIdentity(ctx context.Context, userID string, roles []string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{userID: userID, roles: roles})
}

func identityFrom(c *gin.Context) (identity, bool) {
	if c.Request == nil {
		return identity{}, false
	}
	id, ok := c.Request.Context().Value(identityKey{}).(identity)
	return id, ok
}

// UserID returns the authenticated subject, or "" without auth.
func UserID(c *gin.Context) string {
	if subject := c.GetString(ContextKeyUserID); subject != "" {
		return subject
	}
	if id, ok := identityFrom(c); ok {
		return id.userID
	}
	return ""
}

// Roles returns the roles found in the token, or those carried by WithIdentity.
func Roles(c *gin.Context) []string {
	if roles, ok := c.Get(ContextKeyRoles); ok {
		if list, ok := roles.([]string); ok {
			return list
		}
	}
	if id, ok := identityFrom(c); ok {
		return id.roles
	}
	return nil
}

// rolesFromClaims reads a top level "roles" claim and the Keycloak style
// realm_access.roles claim.
func rolesFromClaims(claims jwt.MapClaims) []string {
	var roles []string
	collect := func(raw any) {
		list, ok := raw.([]any)
		if !ok {
			return
		}
		for _, entry := range list {
			if s, ok := entry.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	collect(claims["roles"])
	if realm, ok := claims["realm_access"].(map[string]any); ok {
		collect(realm["roles"])
	}
	return roles
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
