// Package classify assigns extracted package files to content slots using
// filename heuristics. The heuristics are approximate string matching by
// design and are kept behind the Classifier interface so they can be swapped
// without touching extraction or storage.
package classify

import (
	"path"
	"strings"

	"github.com/aasx-viewer/backend/internal/models"
)

// Slot is the destination a file is routed to.
type Slot string

const (
	SlotNone         Slot = ""         // not image, not document: skipped
	SlotProductImage Slot = "image"    // images/
	SlotLogo         Slot = "logo"     // images/, manufacturer logo
	SlotMarking      Slot = "marking"  // markings/
	SlotDocument     Slot = "document" // documents/
)

// ThumbnailBaseName is the reserved filename (without extension) the store
// writes the declared thumbnail under. Files matching it are excluded from
// the product-image walk; the thumbnail slot is populated exclusively from
// the package's thumbnail relationship.
const ThumbnailBaseName = "thumbnail"

// Classification is the result for one filename.
type Classification struct {
	Slot     Slot
	Category models.DocumentCategory // set for SlotDocument only
}

// Classifier routes a filename to a content slot.
type Classifier interface {
	Classify(filename string) Classification
}

// HeuristicClassifier implements Classifier with substring rules.
type HeuristicClassifier struct {
	rules Rules
}

// New returns a classifier using the given rules.
func New(rules Rules) *HeuristicClassifier {
	return &HeuristicClassifier{rules: rules}
}

// Default returns a classifier with the built-in rules.
func Default() *HeuristicClassifier {
	return New(DefaultRules())
}

// Classify routes by extension family first, then sub-classifies.
// Image sub-classification is mutually exclusive, first match wins,
// case-insensitive filename substring tests.
func (c *HeuristicClassifier) Classify(filename string) Classification {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	lower := strings.ToLower(base)
	ext := strings.ToLower(path.Ext(lower))

	switch {
	case containsString(c.rules.ImageExtensions, ext):
		return Classification{Slot: c.classifyImage(lower, ext)}
	case containsString(c.rules.DocumentExtensions, ext):
		return Classification{Slot: SlotDocument, Category: c.classifyDocument(lower)}
	default:
		return Classification{Slot: SlotNone}
	}
}

func (c *HeuristicClassifier) classifyImage(lower, ext string) Slot {
	if matchesAny(lower, c.rules.LogoPatterns) {
		return SlotLogo
	}
	if matchesAny(lower, c.rules.MarkingPatterns) {
		return SlotMarking
	}
	if lower == ThumbnailBaseName+ext {
		return SlotNone
	}
	return SlotProductImage
}

func (c *HeuristicClassifier) classifyDocument(lower string) models.DocumentCategory {
	for _, rule := range c.rules.Categories {
		if matchesAny(lower, rule.Patterns) {
			return models.DocumentCategory(rule.Category)
		}
	}
	return models.CategoryOther
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
