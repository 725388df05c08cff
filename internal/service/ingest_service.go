package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/ocr"
	"billscan/internal/port"
	"billscan/internal/reconcile"
	"billscan/internal/resolve"
)

// CreditUnavailable is returned by CreditBalance when the provider cannot
// be reached. The caller shows it as "unknown" instead of failing the page.
const CreditUnavailable = -1

// ParseInput is the DTO for one manual parse request.
type ParseInput struct {
	CompanyID uuid.UUID
	BillID    uuid.UUID
	// ForcedCompanyID overrides the matching scope, for bills managed on
	// behalf of a child company.
	ForcedCompanyID *uuid.UUID
	CreateIfMissing bool
}

// ParseOutcome reports what a parse run decided.
type ParseOutcome struct {
	Draft      *domain.DraftInvoice
	Resolution *domain.ResolutionResult
	FromCache  bool
}

// AttachInput is the DTO for one attachment upload.
type AttachInput struct {
	CompanyID uuid.UUID
	BillID    uuid.UUID
	File      multipart.File
	Header    *multipart.FileHeader
}

// AttachOutcome reports the stored attachment and whether the upload
// triggered a hands-off parse.
type AttachOutcome struct {
	Attachment *domain.Attachment `json:"attachment"`
	AutoParsed bool               `json:"auto_parsed"`
}

// IngestService drives the scan-and-reconcile flow for vendor bills.
type IngestService interface {
	// ParseIntoBill scans the bill's attachment, reconciles the extraction
	// and applies the resulting draft. Preconditions are checked in order:
	// the bill must be purchase-class, in draft state, and carry a
	// scannable attachment.
	ParseIntoBill(ctx context.Context, input *ParseInput) (*ParseOutcome, error)
	// AttachFile validates and stores a new attachment for a draft bill.
	// The first attachment of a bill becomes its main one. When the
	// per-company auto-parse flag is on, the upload also triggers the
	// hands-off parse; a parse failure never loses the stored file.
	AttachFile(ctx context.Context, input *AttachInput) (*AttachOutcome, error)
	// DetachFile removes an attachment and its stored object.
	DetachFile(ctx context.Context, companyID, billID, attachmentID uuid.UUID) error
	// AutoParse is the hands-off variant for bills created from inbound
	// email. Any unmet trigger condition skips silently; the bool reports
	// whether a parse actually ran.
	AutoParse(ctx context.Context, companyID, billID uuid.UUID, enabled bool) (bool, error)
	// CreditBalance returns the provider's remaining scan credit. Only
	// billing-capable roles may ask; a provider outage degrades to
	// CreditUnavailable instead of an error.
	CreditBalance(ctx context.Context, role domain.UserRole, kind string) (int, error)
}

type ingestService struct {
	billRepo   port.BillRepository
	attachRepo port.AttachmentRepository
	applier    port.DraftApplier
	storage    port.ObjectStorage
	parser     port.InvoiceParser
	credit     port.CreditClient
	reconciler *reconcile.Reconciler
	s3cfg      *config.S3Config
	autoParse  bool
}

// NewIngestService wires the ingestion flow.
func NewIngestService(
	billRepo port.BillRepository,
	attachRepo port.AttachmentRepository,
	applier port.DraftApplier,
	storage port.ObjectStorage,
	parser port.InvoiceParser,
	credit port.CreditClient,
	lookup port.RecordLookup,
	s3cfg *config.S3Config,
	autoParseCfg *config.AutoParseConfig,
) IngestService {
	return &ingestService{
		billRepo:   billRepo,
		attachRepo: attachRepo,
		applier:    applier,
		storage:    storage,
		parser:     parser,
		credit:     credit,
		reconciler: reconcile.New(lookup),
		s3cfg:      s3cfg,
		autoParse:  autoParseCfg.Enabled,
	}
}

func (s *ingestService) ParseIntoBill(ctx context.Context, input *ParseInput) (*ParseOutcome, error) {
	bill, err := s.billRepo.GetByID(ctx, input.CompanyID, input.BillID)
	if err != nil {
		return nil, fmt.Errorf("loading bill: %w", err)
	}
	if !bill.IsPurchaseDocument() {
		return nil, domain.ErrNotPurchaseDocument
	}
	if bill.State != domain.BillStateDraft {
		return nil, domain.ErrBillNotEditable
	}

	attachment, err := s.eligibleAttachment(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	doc, fromCache, err := s.extract(ctx, attachment)
	if err != nil {
		return nil, err
	}

	scope := domain.MatchScope{
		CompanyID:       input.CompanyID,
		ForcedCompanyID: input.ForcedCompanyID,
	}
	opts := resolve.Options{CreateIfMissing: input.CreateIfMissing}

	draft, result, err := s.reconciler.Reconcile(ctx, doc, scope, opts)
	if err != nil {
		return nil, err
	}

	if err := s.applier.ApplyDraft(ctx, input.CompanyID, bill.ID, draft); err != nil {
		return nil, fmt.Errorf("applying draft: %w", err)
	}

	log.Printf("IngestService.ParseIntoBill: bill %s reconciled, partner=%v warnings=%d cache=%v",
		bill.ID, result.Partner != nil, len(result.Warnings), fromCache)

	return &ParseOutcome{Draft: draft, Resolution: result, FromCache: fromCache}, nil
}

func (s *ingestService) AttachFile(ctx context.Context, input *AttachInput) (*AttachOutcome, error) {
	bill, err := s.billRepo.GetByID(ctx, input.CompanyID, input.BillID)
	if err != nil {
		return nil, fmt.Errorf("loading bill: %w", err)
	}
	if bill.State != domain.BillStateDraft {
		return nil, domain.ErrBillNotEditable
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if _, ok := domain.AllowedUploadExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Header.Size > s.s3cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}

	// Sniff the real content type from the leading bytes; the extension
	// alone is client input.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])
	if !domain.AllowedUploadContentTypes[contentType] {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	isMain := false
	if _, err := s.attachRepo.GetMain(ctx, bill.ID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("loading main attachment: %w", err)
		}
		isMain = true
	}

	att := &domain.Attachment{
		ID:            uuid.New(),
		BillID:        bill.ID,
		MimeType:      contentType,
		StorageBucket: s.s3cfg.Bucket,
		IsMain:        isMain,
	}
	att.StorageKey = fmt.Sprintf("bills/%s/%s/%s", bill.ID, att.ID, input.Header.Filename)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      att.StorageBucket,
		Key:         att.StorageKey,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	}); err != nil {
		return nil, fmt.Errorf("uploading attachment: %w", err)
	}

	if err := s.attachRepo.Create(ctx, att); err != nil {
		// Do not leave an orphan object behind.
		if delErr := s.storage.Delete(ctx, att.StorageBucket, att.StorageKey); delErr != nil {
			log.Printf("IngestService.AttachFile: cleanup of %s failed: %v", att.StorageKey, delErr)
		}
		return nil, fmt.Errorf("creating attachment: %w", err)
	}

	outcome := &AttachOutcome{Attachment: att}
	if s.autoParse {
		ran, err := s.AutoParse(ctx, input.CompanyID, bill.ID, true)
		if err != nil {
			// The attachment is saved; a failed parse can be retried by hand.
			log.Printf("IngestService.AttachFile: auto parse of bill %s failed: %v", bill.ID, err)
		}
		outcome.AutoParsed = ran
	}
	return outcome, nil
}

func (s *ingestService) DetachFile(ctx context.Context, companyID, billID, attachmentID uuid.UUID) error {
	bill, err := s.billRepo.GetByID(ctx, companyID, billID)
	if err != nil {
		return fmt.Errorf("loading bill: %w", err)
	}

	att, err := s.attachRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return fmt.Errorf("loading attachment: %w", err)
	}
	if att.BillID != bill.ID {
		return domain.ErrNotFound
	}

	if err := s.storage.Delete(ctx, att.StorageBucket, att.StorageKey); err != nil {
		return fmt.Errorf("deleting stored object: %w", err)
	}
	if err := s.attachRepo.Delete(ctx, att.ID); err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}

	log.Printf("IngestService.DetachFile: attachment %s removed from bill %s", att.ID, bill.ID)
	return nil
}

func (s *ingestService) AutoParse(ctx context.Context, companyID, billID uuid.UUID, enabled bool) (bool, error) {
	if !enabled {
		return false, nil
	}

	bill, err := s.billRepo.GetByID(ctx, companyID, billID)
	if err != nil {
		return false, fmt.Errorf("loading bill: %w", err)
	}

	// All trigger conditions must hold at once; any miss is a silent skip,
	// never an error. A human can still parse manually later.
	if bill.SourceEmail == "" || bill.PartnerID == nil {
		return false, nil
	}
	if !bill.IsPurchaseDocument() || bill.State != domain.BillStateDraft {
		return false, nil
	}
	main, err := s.attachRepo.GetMain(ctx, bill.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading main attachment: %w", err)
	}
	if !main.Scannable() {
		return false, nil
	}

	if _, err := s.ParseIntoBill(ctx, &ParseInput{CompanyID: companyID, BillID: billID}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ingestService) CreditBalance(ctx context.Context, role domain.UserRole, kind string) (int, error) {
	if !role.CanViewBilling() {
		return 0, domain.ErrMissingPermission
	}

	balance, err := s.credit.CreditBalance(ctx, kind)
	if err != nil {
		var transportErr *ocr.TransportError
		if errors.As(err, &transportErr) {
			log.Printf("IngestService.CreditBalance: provider unavailable: %v", err)
			return CreditUnavailable, nil
		}
		return 0, err
	}
	return balance, nil
}

// eligibleAttachment picks the document to scan: the main attachment when
// it is a PDF or image, otherwise the first PDF attachment.
func (s *ingestService) eligibleAttachment(ctx context.Context, billID uuid.UUID) (*domain.Attachment, error) {
	main, err := s.attachRepo.GetMain(ctx, billID)
	if err == nil && main.Scannable() {
		return main, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("loading main attachment: %w", err)
	}

	pdf, err := s.attachRepo.FindFirstPDF(ctx, billID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoAttachment
	}
	if err != nil {
		return nil, fmt.Errorf("finding pdf attachment: %w", err)
	}
	return pdf, nil
}

// extract returns the attachment's extracted document, reusing the cached
// provider payload when one exists so a re-parse never spends credit.
func (s *ingestService) extract(ctx context.Context, attachment *domain.Attachment) (*domain.ExtractedDocument, bool, error) {
	if len(attachment.ParsedContent) > 0 {
		doc := &domain.ExtractedDocument{}
		if err := json.Unmarshal(attachment.ParsedContent, doc); err == nil {
			return doc, true, nil
		}
		log.Printf("IngestService.extract: discarding unreadable cached parse for attachment %s", attachment.ID)
	}

	fileBytes, err := s.storage.Download(ctx, attachment.StorageBucket, attachment.StorageKey)
	if err != nil {
		return nil, false, fmt.Errorf("downloading attachment: %w", err)
	}

	result, err := s.parser.ParseInvoice(ctx, fileBytes)
	if err != nil {
		return nil, false, err
	}

	if err := s.attachRepo.SaveParsedContent(ctx, attachment.ID, result.Parsed, result.RawText); err != nil {
		// The parse succeeded; a cache write failure only costs a future
		// credit, so log and continue.
		log.Printf("IngestService.extract: caching parse for attachment %s failed: %v", attachment.ID, err)
	}
	return result.Document, false, nil
}
