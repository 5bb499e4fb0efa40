package opc

import (
	"encoding/xml"
	"io"
	"path"
	"strings"
)

// UnknownContentType is returned when neither an override nor a default
// applies to a path.
const UnknownContentType = "application/octet-stream"

// ContentTypeTable maps extensions to default MIME types plus path-specific
// overrides parsed from [Content_Types].xml. An override always wins over a
// default when both apply.
type ContentTypeTable struct {
	defaults  map[string]string // lowercase extension without dot -> MIME type
	overrides map[string]string // part path (leading slash kept as parsed) -> MIME type
}

type contentTypesDoc struct {
	XMLName   xml.Name `xml:"Types"`
	Defaults  []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// ParseContentTypes parses a [Content_Types].xml document.
func ParseContentTypes(r io.Reader) (*ContentTypeTable, error) {
	var doc contentTypesDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	table := NewContentTypeTable()
	for _, d := range doc.Defaults {
		table.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range doc.Overrides {
		table.overrides[o.PartName] = o.ContentType
	}
	return table, nil
}

// NewContentTypeTable returns an empty table; every lookup yields
// UnknownContentType until mappings are added.
func NewContentTypeTable() *ContentTypeTable {
	return &ContentTypeTable{
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
	}
}

// AddDefault registers a default MIME type for an extension (without dot).
func (t *ContentTypeTable) AddDefault(extension, contentType string) {
	t.defaults[strings.ToLower(extension)] = contentType
}

// AddOverride registers a path-specific MIME type.
func (t *ContentTypeTable) AddOverride(partName, contentType string) {
	t.overrides[partName] = contentType
}

// TypeFor resolves the MIME type for a part path: path overrides first
// (checked with and without a leading separator), then the extension default
// (case-insensitive), then UnknownContentType.
func (t *ContentTypeTable) TypeFor(partPath string) string {
	if ct, ok := t.overrides[partPath]; ok {
		return ct
	}
	if strings.HasPrefix(partPath, "/") {
		if ct, ok := t.overrides[partPath[1:]]; ok {
			return ct
		}
	} else {
		if ct, ok := t.overrides["/"+partPath]; ok {
			return ct
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(partPath)), ".")
	if ext != "" {
		if ct, ok := t.defaults[ext]; ok {
			return ct
		}
	}

	return UnknownContentType
}
