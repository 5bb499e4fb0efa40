// package_builder.go - Synthetic exchange packages for tests
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// PackageOptions controls the synthetic package layout.
type PackageOptions struct {
	OmitContentTypes bool
	OmitRootRels     bool

	// ThumbnailPart, when set, adds the part plus a root thumbnail
	// relationship pointing at it.
	ThumbnailPart string

	// ModelJSON, when set, is written to aasx/aas.json and referenced by a
	// root aasx-origin relationship.
	ModelJSON []byte

	// Files maps extra part paths to their content.
	Files map[string][]byte

	// Overrides maps part names to MIME types in [Content_Types].xml.
	Overrides map[string]string
}

// BuildPackage assembles an OPC-structured ZIP in memory.
func BuildPackage(opts PackageOptions) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	if !opts.OmitContentTypes {
		writeEntry(w, "[Content_Types].xml", contentTypesXML(opts.Overrides))
	}
	if !opts.OmitRootRels {
		writeEntry(w, "_rels/.rels", rootRelsXML(opts))
	}
	if opts.ModelJSON != nil {
		writeEntry(w, "aasx/aas.json", opts.ModelJSON)
	}
	if opts.ThumbnailPart != "" {
		writeEntry(w, opts.ThumbnailPart, []byte("thumbnail-bytes"))
	}
	for name, content := range opts.Files {
		writeEntry(w, name, content)
	}

	w.Close()
	return buf.Bytes()
}

// ModelJSON builds a minimal asset-model document with the given identity
// and submodel properties.
func ModelJSON(globalAssetID, idShort, manufacturer, serial string) []byte {
	return []byte(fmt.Sprintf(`{
		"assetAdministrationShells": [
			{
				"id": "shell-1",
				"idShort": %q,
				"assetInformation": { "globalAssetId": %q }
			}
		],
		"submodels": [
			{
				"idShort": "Nameplate",
				"submodelElements": [
					{ "idShort": "ManufacturerName", "value": %q },
					{ "idShort": "SerialNumber", "value": %q },
					{ "idShort": "ManufacturerProductDesignation", "value": "Industrial Valve X2" }
				]
			}
		]
	}`, idShort, globalAssetID, manufacturer, serial))
}

func writeEntry(w *zip.Writer, name string, content []byte) {
	f, err := w.Create(name)
	if err != nil {
		panic(err)
	}
	if _, err := f.Write(content); err != nil {
		panic(err)
	}
}

func contentTypesXML(overrides map[string]string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	buf.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	buf.WriteString(`<Default Extension="json" ContentType="application/json"/>`)
	buf.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	buf.WriteString(`<Default Extension="pdf" ContentType="application/pdf"/>`)
	for part, ct := range overrides {
		buf.WriteString(fmt.Sprintf(`<Override PartName=%q ContentType=%q/>`, part, ct))
	}
	buf.WriteString(`</Types>`)
	return buf.Bytes()
}

func rootRelsXML(opts PackageOptions) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	if opts.ModelJSON != nil {
		buf.WriteString(`<Relationship Id="r1" Type="http://www.admin-shell.io/aasx/relationships/aasx-origin" Target="/aasx/aas.json"/>`)
	}
	if opts.ThumbnailPart != "" {
		buf.WriteString(fmt.Sprintf(`<Relationship Id="r2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail" Target="/%s"/>`, opts.ThumbnailPart))
	}
	buf.WriteString(`</Relationships>`)
	return buf.Bytes()
}
