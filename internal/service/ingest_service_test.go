package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/ocr"
	"billscan/internal/port"
	"billscan/internal/service"
	"billscan/mocks"
)

type ingestFixture struct {
	billRepo   *mocks.MockBillRepository
	attachRepo *mocks.MockAttachmentRepository
	applier    *mocks.MockDraftApplier
	storage    *mocks.MockObjectStorage
	parser     *mocks.MockInvoiceParser
	credit     *mocks.MockCreditClient
	lookup     *mocks.MockRecordLookup
	svc        service.IngestService
}

func newIngestFixture() *ingestFixture {
	return newIngestFixtureWithAutoParse(false)
}

func newIngestFixtureWithAutoParse(enabled bool) *ingestFixture {
	f := &ingestFixture{
		billRepo:   new(mocks.MockBillRepository),
		attachRepo: new(mocks.MockAttachmentRepository),
		applier:    new(mocks.MockDraftApplier),
		storage:    new(mocks.MockObjectStorage),
		parser:     new(mocks.MockInvoiceParser),
		credit:     new(mocks.MockCreditClient),
		lookup:     new(mocks.MockRecordLookup),
	}
	f.svc = service.NewIngestService(
		f.billRepo, f.attachRepo, f.applier, f.storage, f.parser, f.credit, f.lookup,
		&config.S3Config{Bucket: "billscan-attachments", MaxFileSizeMB: 50},
		&config.AutoParseConfig{Enabled: enabled},
	)
	return f
}

func draftBill(companyID uuid.UUID) *domain.VendorBill {
	return &domain.VendorBill{
		ID:        uuid.New(),
		CompanyID: companyID,
		Class:     domain.BillClassPurchase,
		State:     domain.BillStateDraft,
	}
}

func pdfAttachment(billID uuid.UUID) *domain.Attachment {
	return &domain.Attachment{
		ID:            uuid.New(),
		BillID:        billID,
		MimeType:      "application/pdf",
		StorageBucket: "billscan-attachments",
		StorageKey:    "bills/doc.pdf",
		IsMain:        true,
	}
}

const minimalParsed = `{"document_type": "invoice", "invoice_number": "INV-7"}`

func minimalParseResult() *port.ParseResult {
	doc := &domain.ExtractedDocument{}
	_ = json.Unmarshal([]byte(minimalParsed), doc)
	return &port.ParseResult{
		Document: doc,
		Parsed:   json.RawMessage(minimalParsed),
		RawText:  "ocr text",
	}
}

func TestParseIntoBill_HappyPath(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	bill := draftBill(companyID)
	att := pdfAttachment(bill.ID)
	fileBytes := []byte("%PDF")

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)
	f.attachRepo.On("GetMain", mock.Anything, bill.ID).Return(att, nil)
	f.storage.On("Download", mock.Anything, att.StorageBucket, att.StorageKey).Return(fileBytes, nil)
	f.parser.On("ParseInvoice", mock.Anything, fileBytes).Return(minimalParseResult(), nil)
	f.attachRepo.On("SaveParsedContent", mock.Anything, att.ID, json.RawMessage(minimalParsed), "ocr text").Return(nil)
	f.lookup.On("SupportsCocNumber").Return(false)
	f.applier.On("ApplyDraft", mock.Anything, companyID, bill.ID, mock.Anything).Return(nil)

	outcome, err := f.svc.ParseIntoBill(context.Background(), &service.ParseInput{CompanyID: companyID, BillID: bill.ID})

	require.NoError(t, err)
	assert.False(t, outcome.FromCache)
	assert.Equal(t, "INV-7", outcome.Draft.Reference)
	f.applier.AssertCalled(t, "ApplyDraft", mock.Anything, companyID, bill.ID, mock.Anything)
}

func TestParseIntoBill_RejectsSaleDocument(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	bill := draftBill(companyID)
	bill.Class = domain.BillClassSale

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)

	_, err := f.svc.ParseIntoBill(context.Background(), &service.ParseInput{CompanyID: companyID, BillID: bill.ID})

	require.ErrorIs(t, err, domain.ErrNotPurchaseDocument)
	f.attachRepo.AssertNotCalled(t, "GetMain", mock.Anything, mock.Anything)
}

func TestParseIntoBill_RejectsPostedBill(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	bill := draftBill(companyID)
	bill.State = domain.BillStatePosted

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)

	_, err := f.svc.ParseIntoBill(context.Background(), &service.ParseInput{CompanyID: companyID, BillID: bill.ID})

	require.ErrorIs(t, err, domain.ErrBillNotEditable)
}

func TestParseIntoBill_NoEligibleAttachment(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	bill := draftBill(companyID)

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)
	f.attachRepo.On("GetMain", mock.Anything, bill.ID).Return(nil, domain.ErrNotFound)
	f.attachRepo.On("FindFirstPDF", mock.Anything, bill.ID).Return(nil, domain.ErrNotFound)

	_, err := f.svc.ParseIntoBill(context.Background(), &service.ParseInput{CompanyID: companyID, BillID: bill.ID})

	require.ErrorIs(t, err, domain.ErrNoAttachment)
	f.parser.AssertNotCalled(t, "ParseInvoice", mock.Anything, mock.Anything)
}

func TestParseIntoBill_UnscannableMainFallsBackToFirstPDF(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	bill := draftBill(companyID)
	main := pdfAttachment(bill.ID)
	main.MimeType = "text/plain"
	pdf := pdfAttachment(bill.ID)
	pdf.IsMain = false

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)
	f.attachRepo.On("GetMain", mock.Anything, bill.ID).Return(main, nil)
	f.attachRepo.On("FindFirstPDF", mock.Anything, bill.ID).Return(pdf, nil)
	f.storage.On("Download", mock.Anything, pdf.StorageBucket, pdf.StorageKey).Return([]byte("%PDF"), nil)
	f.parser.On("ParseInvoice", mock.Anything, mock.Anything).Return(minimalParseResult(), nil)
	f.attachRepo.On("SaveParsedContent", mock.Anything, pdf.ID, mock.Anything, mock.Anything).Return(nil)
	f.lookup.On("SupportsCocNumber").Return(false)
	f.applier.On("ApplyDraft", mock.Anything, companyID, bill.ID, mock.Anything).Return(nil)

	_, err := f.svc.ParseIntoBill(context.Background(), &service.ParseInput{CompanyID: companyID, BillID: bill.ID})

	require.NoError(t, err)
}

func TestParseIntoBill_CachedParseSkipsRemoteCall(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	bill := draftBill(companyID)
	att := pdfAttachment(bill.ID)
	att.ParsedContent = json.RawMessage(minimalParsed)

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)
	f.attachRepo.On("GetMain", mock.Anything, bill.ID).Return(att, nil)
	f.lookup.On("SupportsCocNumber").Return(false)
	f.applier.On("ApplyDraft", mock.Anything, companyID, bill.ID, mock.Anything).Return(nil)

	outcome, err := f.svc.ParseIntoBill(context.Background(), &service.ParseInput{CompanyID: companyID, BillID: bill.ID})

	require.NoError(t, err)
	assert.True(t, outcome.FromCache)
	f.storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
	f.parser.AssertNotCalled(t, "ParseInvoice", mock.Anything, mock.Anything)
}

func TestParseIntoBill_NonInvoiceScanFails(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	bill := draftBill(companyID)
	att := pdfAttachment(bill.ID)
	att.ParsedContent = json.RawMessage(`{"document_type": "other"}`)

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)
	f.attachRepo.On("GetMain", mock.Anything, bill.ID).Return(att, nil)

	_, err := f.svc.ParseIntoBill(context.Background(), &service.ParseInput{CompanyID: companyID, BillID: bill.ID})

	require.ErrorIs(t, err, domain.ErrUnsupportedDocumentType)
	f.applier.AssertNotCalled(t, "ApplyDraft", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAutoParse_Disabled(t *testing.T) {
	f := newIngestFixture()

	ran, err := f.svc.AutoParse(context.Background(), uuid.New(), uuid.New(), false)

	require.NoError(t, err)
	assert.False(t, ran)
	f.billRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestAutoParse_SkipsWithoutSourceEmailOrPartner(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()

	cases := map[string]func(b *domain.VendorBill){
		"no source email": func(b *domain.VendorBill) {
			partnerID := uuid.New()
			b.PartnerID = &partnerID
		},
		"no partner": func(b *domain.VendorBill) {
			b.SourceEmail = "billing@acme.com"
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			bill := draftBill(companyID)
			mutate(bill)
			f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil).Once()

			ran, err := f.svc.AutoParse(context.Background(), companyID, bill.ID, true)

			require.NoError(t, err)
			assert.False(t, ran)
		})
	}
	f.attachRepo.AssertNotCalled(t, "GetMain", mock.Anything, mock.Anything)
}

func TestAutoParse_RunsWhenAllConditionsHold(t *testing.T) {
	f := newIngestFixture()
	companyID := uuid.New()
	partnerID := uuid.New()
	bill := draftBill(companyID)
	bill.SourceEmail = "billing@acme.com"
	bill.PartnerID = &partnerID
	att := pdfAttachment(bill.ID)
	att.ParsedContent = json.RawMessage(minimalParsed)

	f.billRepo.On("GetByID", mock.Anything, companyID, bill.ID).Return(bill, nil)
	f.attachRepo.On("GetMain", mock.Anything, bill.ID).Return(att, nil)
	f.lookup.On("SupportsCocNumber").Return(false)
	f.applier.On("ApplyDraft", mock.Anything, companyID, bill.ID, mock.Anything).Return(nil)

	ran, err := f.svc.AutoParse(context.Background(), companyID, bill.ID, true)

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestCreditBalance_RequiresBillingRole(t *testing.T) {
	f := newIngestFixture()

	_, err := f.svc.CreditBalance(context.Background(), domain.RoleClerk, "invoice")

	require.ErrorIs(t, err, domain.ErrMissingPermission)
	f.credit.AssertNotCalled(t, "CreditBalance", mock.Anything, mock.Anything)
}

func TestCreditBalance_Success(t *testing.T) {
	f := newIngestFixture()
	f.credit.On("CreditBalance", mock.Anything, "invoice").Return(42, nil)

	got, err := f.svc.CreditBalance(context.Background(), domain.RoleAdmin, "invoice")

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestCreditBalance_TransportFailureDegrades(t *testing.T) {
	f := newIngestFixture()
	f.credit.On("CreditBalance", mock.Anything, "invoice").Return(0, &ocr.TransportError{Err: errors.New("connection refused")})

	got, err := f.svc.CreditBalance(context.Background(), domain.RoleAccountant, "invoice")

	require.NoError(t, err)
	assert.Equal(t, service.CreditUnavailable, got)
}

func TestCreditBalance_RequestErrorPropagates(t *testing.T) {
	f := newIngestFixture()
	reqErr := &ocr.RequestError{Name: "No billing group"}
	f.credit.On("CreditBalance", mock.Anything, "invoice").Return(0, reqErr)

	_, err := f.svc.CreditBalance(context.Background(), domain.RoleAdmin, "invoice")

	var got *ocr.RequestError
	require.ErrorAs(t, err, &got)
}
