package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrNotPurchaseDocument     = errors.New("only vendor bills can be imported from the OCR provider")
	ErrBillNotEditable         = errors.New("extracted data can only be imported into bills in draft state")
	ErrNoAttachment            = errors.New("no attachment eligible for scanning")
	ErrMissingPermission       = errors.New("missing billing permission")
	ErrUnsupportedFileType     = errors.New("only PDF and image attachments are accepted")
	ErrFileTooLarge            = errors.New("attachment exceeds the maximum file size")
	ErrUnsupportedDocumentType = errors.New("the scanned document is not a vendor bill")
	ErrMalformedInput          = errors.New("malformed extracted field")
)
