package models

import (
	"errors"
	"io"
	"testing"
)

func TestImportErrorWrapping(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := NewImportError(ErrInvalidPackage, "file is not a valid package archive", cause)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("ImportError does not unwrap to its cause")
	}

	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != ErrInvalidPackage {
		t.Errorf("errors.As failed: %v", err)
	}

	msg := err.Error()
	if msg != "invalidPackage: file is not a valid package archive: unexpected EOF" {
		t.Errorf("Error() = %q", msg)
	}

	bare := NewImportError(ErrUserAborted, "import aborted", nil)
	if bare.Error() != "userAborted: import aborted" {
		t.Errorf("Error() without cause = %q", bare.Error())
	}
}

func TestImportStateTerminal(t *testing.T) {
	tests := []struct {
		state    ImportState
		terminal bool
	}{
		{ImportStateIdle, true},
		{ImportStateDownloading, false},
		{ImportStateExtracting, false},
		{ImportStateAwaitingDecision, false},
		{ImportStateParsing, false},
		{ImportStateStoringContent, false},
		{ImportStateCompleted, true},
		{ImportStateFailed, true},
	}

	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestExtractedContentIsEmpty(t *testing.T) {
	if !(ExtractedContent{}).IsEmpty() {
		t.Error("Zero value not empty")
	}
	if (ExtractedContent{Thumbnail: "t.png"}).IsEmpty() {
		t.Error("Content with thumbnail reported empty")
	}
	if (ExtractedContent{Documents: []DocumentRecord{{ID: "d"}}}).IsEmpty() {
		t.Error("Content with document reported empty")
	}
}
