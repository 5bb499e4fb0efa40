package models

// WarningKind tags a non-fatal finding accumulated during an import.
type WarningKind string

const (
	WarningMissingContent       WarningKind = "missingContent"
	WarningCorruptedFile        WarningKind = "corruptedFile"
	WarningUnsupportedFormat    WarningKind = "unsupportedFormat"
	WarningPartialMetadata      WarningKind = "partialMetadata"
	WarningRelationshipNotFound WarningKind = "relationshipNotFound"
)

// Warning is informational only; warnings never abort an import.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
	Path    string      `json:"path,omitempty"` // package-relative, when known
}

// IssueKind tags a pre-commit finding from the pre-scan step.
type IssueKind string

const (
	IssueMissingContent     IssueKind = "missingContent"
	IssueCorruptedMember    IssueKind = "corruptedMember"
	IssueUnsupportedFormat  IssueKind = "unsupportedFormat"
	IssueIncompleteMetadata IssueKind = "incompleteMetadata"
)

// ImportIssue is discovered before any content is written. Unlike a Warning,
// an issue halts the pipeline until the caller decides to continue or abort.
type ImportIssue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
}
