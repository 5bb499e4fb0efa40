package models

// DocumentCategory classifies a stored document. Inferred once at extraction
// time from filename substrings and never recomputed.
type DocumentCategory string

const (
	CategoryManual      DocumentCategory = "manual"
	CategoryCertificate DocumentCategory = "certificate"
	CategoryDatasheet   DocumentCategory = "datasheet"
	CategoryDrawing     DocumentCategory = "drawing"
	CategoryOther       DocumentCategory = "other"
)

// DocumentRecord describes one document copied into the per-asset store.
type DocumentRecord struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	LocalPath        string           `json:"localPath"`
	MimeType         string           `json:"mimeType"`
	Category         DocumentCategory `json:"category"`
	OriginalFilename string           `json:"originalFilename"`
	Size             int64            `json:"size,omitempty"`
}
