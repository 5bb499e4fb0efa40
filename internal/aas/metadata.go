// Package aas locates and reads the embedded asset-model document of an
// exchange package. Everything here is best-effort: a malformed or missing
// model never aborts an import, it only thins out the resulting metadata.
package aas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aasx-viewer/backend/internal/models"
	"github.com/aasx-viewer/backend/internal/opc"
)

// ModelDocumentPaths are the conventional locations probed for the asset
// model when no usable origin relationship exists.
var ModelDocumentPaths = []string{
	"aasx/aas.json",
	"aas.json",
	"aasx/aas.xml",
}

// ResolveAssetID derives the asset identifier for an extracted package.
// Resolution order: a root relationship of the origin/spec type pointing at a
// parseable part, then a top-level id on a conventional model document, then
// a synthesized random identifier. The import never fails here.
func ResolveAssetID(workspace string, rootRels []opc.Relationship) (string, []models.Warning) {
	var warnings []models.Warning

	for _, rel := range rootRels {
		if !rel.IsOrigin() || !rel.IsInternal() {
			continue
		}
		target := rel.NormalizedTarget()
		doc, err := parseModelDocument(filepath.Join(workspace, filepath.FromSlash(target)))
		if err != nil {
			warnings = append(warnings, models.Warning{
				Kind:    models.WarningRelationshipNotFound,
				Message: fmt.Sprintf("origin relationship target not parseable: %v", err),
				Path:    target,
			})
			continue
		}
		if doc.GlobalAssetID != "" {
			return doc.GlobalAssetID, warnings
		}
		if doc.ID != "" {
			return doc.ID, warnings
		}
	}

	for _, rel := range ModelDocumentPaths {
		doc, err := parseModelDocument(filepath.Join(workspace, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if doc.GlobalAssetID != "" {
			return doc.GlobalAssetID, warnings
		}
		if doc.ID != "" {
			return doc.ID, warnings
		}
	}

	warnings = append(warnings, models.Warning{
		Kind:    models.WarningPartialMetadata,
		Message: "no asset identifier found in package, generated a new one",
	})
	return uuid.New().String(), warnings
}

// ExtractMetadata probes the conventional model locations and populates the
// display metadata from the first document that parses as structured data.
// Absent fields stay empty; a fully unparseable model yields metadata with
// only the source filename and timestamp set, plus a warning.
func ExtractMetadata(workspace, sourceName string) (models.Metadata, []models.Warning) {
	meta := models.Metadata{
		SourceFile: sourceName,
		ImportedAt: time.Now(),
	}

	var probed bool
	for _, rel := range ModelDocumentPaths {
		path := filepath.Join(workspace, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		probed = true

		doc, err := parseModelDocument(path)
		if err != nil {
			continue
		}

		meta.AssetName = doc.Name
		meta.Manufacturer = doc.Manufacturer
		meta.SerialNumber = doc.SerialNumber
		meta.ProductDesignation = doc.ProductDesignation
		return meta, nil
	}

	if probed {
		return meta, []models.Warning{{
			Kind:    models.WarningPartialMetadata,
			Message: "asset model document present but not parseable, metadata is incomplete",
		}}
	}
	return meta, []models.Warning{{
		Kind:    models.WarningPartialMetadata,
		Message: "no asset model document found at conventional locations",
	}}
}

// modelDocument is the handful of well-known fields pulled out of an asset
// model, regardless of its serialization.
type modelDocument struct {
	ID                 string
	GlobalAssetID      string
	Name               string
	Manufacturer       string
	SerialNumber       string
	ProductDesignation string
}

func parseModelDocument(path string) (*modelDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseModelJSON(data)
	case ".xml":
		return parseModelXML(data)
	default:
		// Sniff: JSON documents open with an object or array.
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			return parseModelJSON(data)
		}
		return parseModelXML(data)
	}
}

func parseModelJSON(data []byte) (*modelDocument, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	doc := &modelDocument{}
	doc.ID, _ = root["id"].(string)
	doc.Name, _ = root["idShort"].(string)

	if doc.Name == "" {
		if shells, ok := root["assetAdministrationShells"].([]interface{}); ok && len(shells) > 0 {
			if shell, ok := shells[0].(map[string]interface{}); ok {
				doc.Name, _ = shell["idShort"].(string)
				if doc.ID == "" {
					doc.ID, _ = shell["id"].(string)
				}
			}
		}
	}

	doc.GlobalAssetID = findGlobalAssetID(root)
	scanElements(root, doc)
	return doc, nil
}

// findGlobalAssetID searches the document for an assetInformation object
// carrying a global asset identifier, at any nesting depth.
func findGlobalAssetID(node interface{}) string {
	switch v := node.(type) {
	case map[string]interface{}:
		if info, ok := v["assetInformation"].(map[string]interface{}); ok {
			if id := globalIDFromAssetInfo(info); id != "" {
				return id
			}
		}
		for _, child := range v {
			if id := findGlobalAssetID(child); id != "" {
				return id
			}
		}
	case []interface{}:
		for _, child := range v {
			if id := findGlobalAssetID(child); id != "" {
				return id
			}
		}
	}
	return ""
}

func globalIDFromAssetInfo(info map[string]interface{}) string {
	switch id := info["globalAssetId"].(type) {
	case string:
		return id
	case map[string]interface{}:
		// Older serializations wrap the identifier in a reference with keys.
		if keys, ok := id["keys"].([]interface{}); ok && len(keys) > 0 {
			if key, ok := keys[0].(map[string]interface{}); ok {
				if value, ok := key["value"].(string); ok {
					return value
				}
			}
		}
	}
	return ""
}

// scanElements walks every nested collection looking for submodel elements
// whose short name matches the well-known metadata fields. Case-insensitive
// substring matching; first hit per field wins.
func scanElements(node interface{}, doc *modelDocument) {
	switch v := node.(type) {
	case map[string]interface{}:
		idShort, _ := v["idShort"].(string)
		if idShort != "" {
			if value, ok := scalarValue(v["value"]); ok {
				assignField(doc, idShort, value)
			}
		}
		for _, child := range v {
			scanElements(child, doc)
		}
	case []interface{}:
		for _, child := range v {
			scanElements(child, doc)
		}
	}
}

func scalarValue(v interface{}) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", value), "0"), "."), true
	case bool:
		return fmt.Sprintf("%t", value), true
	}
	return "", false
}

func assignField(doc *modelDocument, idShort, value string) {
	if value == "" {
		return
	}
	name := strings.ToLower(idShort)
	switch {
	case strings.Contains(name, "serial"):
		if doc.SerialNumber == "" {
			doc.SerialNumber = value
		}
	case strings.Contains(name, "designation"):
		if doc.ProductDesignation == "" {
			doc.ProductDesignation = value
		}
	case strings.Contains(name, "manufacturer"):
		if doc.Manufacturer == "" {
			doc.Manufacturer = value
		}
	}
}
