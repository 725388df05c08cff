package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billscan/internal/service"
)

// BillHandler handles scan-and-reconcile endpoints for vendor bills.
type BillHandler struct {
	ingestSvc service.IngestService
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(ingestSvc service.IngestService) *BillHandler {
	return &BillHandler{ingestSvc: ingestSvc}
}

type parseRequest struct {
	ForcedCompanyID *uuid.UUID `json:"forced_company_id"`
	CreateIfMissing bool       `json:"create_if_missing"`
}

type parseResponse struct {
	FromCache  bool        `json:"from_cache"`
	Draft      interface{} `json:"draft"`
	Resolution interface{} `json:"resolution"`
}

// Parse handles POST /api/v1/bills/:id/parse
func (h *BillHandler) Parse(c *gin.Context) {
	companyID, _, ok := extractCompanyContext(c)
	if !ok {
		return
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill id")
		return
	}

	var req parseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
			return
		}
	}

	outcome, err := h.ingestSvc.ParseIntoBill(c.Request.Context(), &service.ParseInput{
		CompanyID:       companyID,
		BillID:          billID,
		ForcedCompanyID: req.ForcedCompanyID,
		CreateIfMissing: req.CreateIfMissing,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, parseResponse{
		FromCache:  outcome.FromCache,
		Draft:      outcome.Draft,
		Resolution: outcome.Resolution,
	})
}

// UploadAttachment handles POST /api/v1/bills/:id/attachments
func (h *BillHandler) UploadAttachment(c *gin.Context) {
	companyID, _, ok := extractCompanyContext(c)
	if !ok {
		return
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill id")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	outcome, err := h.ingestSvc.AttachFile(c.Request.Context(), &service.AttachInput{
		CompanyID: companyID,
		BillID:    billID,
		File:      file,
		Header:    header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, outcome)
}

// DeleteAttachment handles DELETE /api/v1/bills/:id/attachments/:attachment_id
func (h *BillHandler) DeleteAttachment(c *gin.Context) {
	companyID, _, ok := extractCompanyContext(c)
	if !ok {
		return
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill id")
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachment_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid attachment id")
		return
	}

	if err := h.ingestSvc.DetachFile(c.Request.Context(), companyID, billID, attachmentID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": attachmentID})
}

// CreditBalance handles GET /api/v1/credit/:kind
func (h *BillHandler) CreditBalance(c *gin.Context) {
	_, role, ok := extractCompanyContext(c)
	if !ok {
		return
	}

	balance, err := h.ingestSvc.CreditBalance(c.Request.Context(), role, c.Param("kind"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"balance": balance})
}
