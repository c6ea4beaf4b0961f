package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/auth"
	"github.com/pharmapos/backend/internal/infrastructure/logger"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Identity headers, read only when no token verifier is configured
const (
	UserIDHeader   = "X-User-ID"
	TenantIDHeader = "X-Tenant-ID"
)

const (
	tenantIDKey = "tenant_id"
	userIDKey   = "user_id"
)

// Identity resolves the acting tenant and user. With a verifier set, only a
// verified bearer token carries identity and the X-* headers are ignored;
// without one the headers are trusted. A request without a tenant is served
// for defaultTenant; one without a user is let through, since only some
// operations need an actor.
func Identity(verifier *auth.TokenVerifier, defaultTenant uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			tenantID, userID uuid.UUID
			ok               bool
		)
		if verifier != nil {
			tenantID, userID, ok = fromBearer(c, verifier)
		} else {
			tenantID, userID, ok = fromHeaders(c)
		}
		if !ok {
			return
		}
		if tenantID == uuid.Nil {
			tenantID = defaultTenant
		}

		c.Set(tenantIDKey, tenantID)
		c.Set(userIDKey, userID)

		user := ""
		if userID != uuid.Nil {
			user = userID.String()
		}
		ctx := logger.WithIdentity(c.Request.Context(), tenantID.String(), user)
		telemetry.SetAttributes(trace.SpanFromContext(ctx), "tenant.id", tenantID.String(), "user.id", user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// fromBearer verifies the Authorization header. A request without one is
// anonymous. ok is false when the request has been rejected.
func fromBearer(c *gin.Context, verifier *auth.TokenVerifier) (tenantID, userID uuid.UUID, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return uuid.Nil, uuid.Nil, true
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		abort(c, http.StatusUnauthorized, shared.CodeUnauthorized, "authorization header must be a bearer token")
		return uuid.Nil, uuid.Nil, false
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		abort(c, http.StatusUnauthorized, shared.CodeUnauthorized, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	if userID, err = claims.UserID(); err == nil {
		tenantID, err = claims.Tenant()
	}
	if err != nil {
		abort(c, http.StatusUnauthorized, shared.CodeUnauthorized, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

func fromHeaders(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, err := headerUUID(c, TenantIDHeader)
	if err != nil {
		abort(c, http.StatusBadRequest, shared.CodeValidation, "invalid "+TenantIDHeader+" header")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = headerUUID(c, UserIDHeader)
	if err != nil {
		abort(c, http.StatusBadRequest, shared.CodeValidation, "invalid "+UserIDHeader+" header")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

func headerUUID(c *gin.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.GetHeader(name))
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

// TenantID returns the tenant resolved by Identity
func TenantID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(tenantIDKey)
	tenantID, _ := id.(uuid.UUID)
	return tenantID
}

// UserID returns the acting user resolved by Identity, or uuid.Nil
func UserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(uuid.UUID)
	return userID
}
