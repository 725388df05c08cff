package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billscan/internal/domain"
)

// Context keys for company-scoped request context.
const (
	ContextKeyCompanyID = "company_id"
	ContextKeyRole      = "role"
)

// Headers set by the host platform's gateway after it authenticates the
// caller. This service trusts them and never sees credentials.
const (
	headerCompanyID = "X-Company-ID"
	headerUserRole  = "X-User-Role"
)

// CompanyContext extracts the company and role headers into the request
// context. Requests without a valid company are rejected: every downstream
// query needs the scope.
func CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, err := uuid.Parse(c.GetHeader(headerCompanyID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "company context required"},
			})
			return
		}
		c.Set(ContextKeyCompanyID, companyID)
		c.Set(ContextKeyRole, c.GetHeader(headerUserRole))
		c.Next()
	}
}

// GetCompanyID returns the company ID set by CompanyContext.
func GetCompanyID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(ContextKeyCompanyID)
	if !exists {
		return uuid.Nil, errors.New("company context not set")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("company context has unexpected type")
	}
	return id, nil
}

// GetRole returns the caller role set by CompanyContext.
func GetRole(c *gin.Context) domain.UserRole {
	v, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	role, _ := v.(string)
	return domain.UserRole(role)
}
