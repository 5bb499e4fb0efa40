package models

import "time"

// Metadata holds the display metadata extracted from the embedded asset model.
// Every field except ImportedAt is optional; absence is not an error.
type Metadata struct {
	AssetName          string    `json:"assetName,omitempty"`
	Manufacturer       string    `json:"manufacturer,omitempty"`
	SerialNumber       string    `json:"serialNumber,omitempty"`
	ProductDesignation string    `json:"productDesignation,omitempty"`
	SourceFile         string    `json:"sourceFile,omitempty"`
	ImportedAt         time.Time `json:"importedAt"`
}

// ExtractedContent describes the content classified out of a package,
// as package-relative or store-relative file locations.
type ExtractedContent struct {
	Thumbnail        string           `json:"thumbnail,omitempty"`
	ProductImages    []string         `json:"productImages,omitempty"`
	ManufacturerLogo string           `json:"manufacturerLogo,omitempty"`
	Markings         []string         `json:"markings,omitempty"`
	Documents        []DocumentRecord `json:"documents,omitempty"`
}

// IsEmpty reports whether no content slot is populated. Used by callers to
// short-circuit rendering.
func (c ExtractedContent) IsEmpty() bool {
	return c.Thumbnail == "" &&
		len(c.ProductImages) == 0 &&
		c.ManufacturerLogo == "" &&
		len(c.Markings) == 0 &&
		len(c.Documents) == 0
}

// ParseResult is the immutable outcome of one successful import.
// Owned by the caller after return.
type ParseResult struct {
	AssetID  string           `json:"assetId"`
	Metadata Metadata         `json:"metadata"`
	Content  ExtractedContent `json:"content"`
	Warnings []Warning        `json:"warnings,omitempty"`
}
