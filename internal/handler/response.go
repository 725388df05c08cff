package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billscan/internal/domain"
	"billscan/internal/middleware"
	"billscan/internal/ocr"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var reqErr *ocr.RequestError
	var transportErr *ocr.TransportError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrNotPurchaseDocument):
		return http.StatusBadRequest, "NOT_PURCHASE_DOCUMENT", domain.ErrNotPurchaseDocument.Error()
	case errors.Is(err, domain.ErrBillNotEditable):
		return http.StatusBadRequest, "BILL_NOT_EDITABLE", domain.ErrBillNotEditable.Error()
	case errors.Is(err, domain.ErrNoAttachment):
		return http.StatusBadRequest, "NO_ATTACHMENT", domain.ErrNoAttachment.Error()
	case errors.Is(err, domain.ErrUnsupportedDocumentType):
		return http.StatusUnprocessableEntity, "UNSUPPORTED_DOCUMENT_TYPE", domain.ErrUnsupportedDocumentType.Error()
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusUnprocessableEntity, "MALFORMED_EXTRACTION", "the provider returned a malformed document"
	case errors.Is(err, domain.ErrMissingPermission):
		return http.StatusForbidden, "MISSING_PERMISSION", domain.ErrMissingPermission.Error()
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", domain.ErrUnsupportedFileType.Error()
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", domain.ErrFileTooLarge.Error()
	case errors.As(err, &reqErr):
		// The provider's own diagnostic, already stripped of markup.
		return http.StatusBadRequest, "PROVIDER_REJECTED", reqErr.Error()
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, "PROVIDER_UNAVAILABLE", "the scanning provider is unavailable, try again later"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// extractCompanyContext extracts company ID and role from the request
// context. Returns false if company context is missing (error response
// already written).
func extractCompanyContext(c *gin.Context) (companyID uuid.UUID, role domain.UserRole, ok bool) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing company context")
		return uuid.Nil, "", false
	}
	return companyID, middleware.GetRole(c), true
}
