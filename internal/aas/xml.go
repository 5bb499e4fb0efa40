package aas

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// parseModelXML scans an XML asset model with a streaming decoder, matching
// elements by local name so namespace prefixes across AAS schema revisions
// do not matter. It extracts the same well-known fields as the JSON path.
func parseModelXML(data []byte) (*modelDocument, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	doc := &modelDocument{}

	var (
		sawElement     bool
		inAssetInfo    int
		lastIDShort    string
		pendingCapture string // local name of the element whose text we want next
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
			local := t.Name.Local
			switch local {
			case "assetInformation":
				inAssetInfo++
			case "globalAssetId", "idShort", "id", "value":
				pendingCapture = local
			default:
				pendingCapture = ""
			}
		case xml.EndElement:
			if t.Name.Local == "assetInformation" && inAssetInfo > 0 {
				inAssetInfo--
			}
			pendingCapture = ""
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || pendingCapture == "" {
				continue
			}
			switch pendingCapture {
			case "globalAssetId":
				if inAssetInfo > 0 && doc.GlobalAssetID == "" {
					doc.GlobalAssetID = text
				}
			case "id":
				if doc.ID == "" {
					doc.ID = text
				}
			case "idShort":
				if doc.Name == "" {
					doc.Name = text
				}
				lastIDShort = text
			case "value":
				if lastIDShort != "" {
					assignField(doc, lastIDShort, text)
				}
			}
			pendingCapture = ""
		}
	}

	if !sawElement {
		return nil, io.ErrUnexpectedEOF
	}
	return doc, nil
}
