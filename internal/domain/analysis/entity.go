package analysis

// ID identifies one of the supported analyses.
type ID string

const (
	IDCost          ID = "cost"
	IDDeadStock     ID = "dead_stock"
	IDStockout      ID = "stockout"
	IDCargoLeakage  ID = "cargo_leakage"
	IDInvoiceOCR    ID = "invoice_ocr"
	IDBulkImport    ID = "bulk_import"
	IDTaxProjection ID = "tax_projection"
	IDCreativeScore ID = "creative_score"
)

// KnownIDs lists every analysis id the normalizer has a transform for.
var KnownIDs = []ID{
	IDCost,
	IDDeadStock,
	IDStockout,
	IDCargoLeakage,
	IDInvoiceOCR,
	IDBulkImport,
	IDTaxProjection,
	IDCreativeScore,
}

// FileCategory decides how an attached file is encoded.
type FileCategory string

const (
	FileNone     FileCategory = ""
	FileImage    FileCategory = "image"
	FileDocument FileCategory = "document"
)

// FieldSource describes where an extra field value comes from, e.g. "number" or "text".
type FieldSource string

const (
	SourceNumber FieldSource = "number"
	SourceText   FieldSource = "text"
)

// Descriptor is the immutable definition of one analysis.
type Descriptor struct {
	ID           ID                     `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	RemoteTarget string                 `json:"-"`
	ExtraFields  map[string]FieldSource `json:"extra_fields,omitempty"`
	RequiresFile bool                   `json:"requires_file"`
	FileCategory FileCategory           `json:"file_category,omitempty"`
	Accept       string                 `json:"accept,omitempty"`
}

// Session is the caller identity used to stamp outbound requests.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// EncodedFile is a file already converted to its transport form.
type EncodedFile struct {
	Name     string
	MimeType string
	DataURI  string
	// Size is the byte length of the original upload.
	Size int
}
