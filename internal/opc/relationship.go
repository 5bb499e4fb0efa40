// Package opc resolves Open Packaging Conventions (ISO/IEC 29500-2)
// structure: relationship fragments and the content-types manifest.
package opc

import (
	"encoding/xml"
	"io"
	"path"
	"strings"
)

// Well-known package part paths.
const (
	RootRelsPath     = "_rels/.rels"
	ContentTypesPath = "[Content_Types].xml"
)

// Recognized relationship type URIs. The aasx-origin and aas-spec types each
// have two historical URI variants in circulation; both must be accepted.
const (
	RelTypeCoreProperties = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelTypeThumbnail      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail"

	RelTypeAasxOrigin    = "http://www.admin-shell.io/aasx/relationships/aasx-origin"
	RelTypeAasxOriginAlt = "http://admin-shell.io/aasx/relationships/aasx-origin"
	RelTypeAasSpec       = "http://www.admin-shell.io/aasx/relationships/aas-spec"
	RelTypeAasSpecAlt    = "http://admin-shell.io/aasx/relationships/aas-spec"
)

// Relationship is one typed link from a part (or the package root) to a
// target, parsed from a .rels fragment.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// IsInternal is true unless TargetMode is explicitly "external"
// (case-insensitive).
func (r Relationship) IsInternal() bool {
	return !strings.EqualFold(r.TargetMode, "external")
}

// NormalizedTarget strips one leading path separator from the target.
func (r Relationship) NormalizedTarget() string {
	if strings.HasPrefix(r.Target, "/") {
		return r.Target[1:]
	}
	return r.Target
}

// IsOrigin reports whether the relationship carries either variant of the
// asset-model origin or spec type.
func (r Relationship) IsOrigin() bool {
	switch r.Type {
	case RelTypeAasxOrigin, RelTypeAasxOriginAlt, RelTypeAasSpec, RelTypeAasSpecAlt:
		return true
	}
	return false
}

type relationshipsDoc struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// ParseRelationships parses one .rels XML fragment into relationship records.
func ParseRelationships(r io.Reader) ([]Relationship, error) {
	var doc relationshipsDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Relationships, nil
}

// RelsPath derives the relationship-file path for a part: a `_rels` segment
// is inserted before the final path component and `.rels` appended to the
// filename. The package root's relationships live at RootRelsPath.
func RelsPath(partPath string) string {
	partPath = strings.TrimPrefix(partPath, "/")
	if partPath == "" {
		return RootRelsPath
	}
	dir, file := path.Split(partPath)
	return dir + "_rels/" + file + ".rels"
}

// FindByType returns the relationships matching any of the given type URIs,
// preserving input order.
func FindByType(rels []Relationship, types ...string) []Relationship {
	var out []Relationship
	for _, rel := range rels {
		for _, t := range types {
			if rel.Type == t {
				out = append(out, rel)
				break
			}
		}
	}
	return out
}
