package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotStateDocument is returned when a document lacks "type": "state".
var ErrNotStateDocument = errors.New("not a state document")

// =============================================================================
// State Serialization API
// =============================================================================

// MarshalState converts a state document to indented JSON bytes.
func MarshalState(doc StateDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeStateTo(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalState decodes a state document and checks its type.
func UnmarshalState(data []byte) (StateDocument, error) {
	return readStateFrom(bytes.NewReader(data))
}

// WriteState writes a state document as JSON to an io.Writer.
func WriteState(doc StateDocument, w io.Writer) error {
	return writeStateTo(doc, w)
}

// ReadState decodes a state document from an io.Reader.
func ReadState(r io.Reader) (StateDocument, error) {
	return readStateFrom(r)
}

// WriteStateFile writes a state document to a JSON file.
// The file is created with 0644 permissions.
func WriteStateFile(doc StateDocument, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeStateTo(doc, f)
}

// ReadStateFile reads a JSON file and returns the decoded state document.
func ReadStateFile(path string) (StateDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return StateDocument{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readStateFrom(f)
}

// IsStateDocument reports whether raw JSON is a saved state rather than a
// dataset.
func IsStateDocument(data []byte) bool {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return false
	}
	return head.Type == DocumentTypeState
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeStateTo(doc StateDocument, w io.Writer) error {
	if doc.Type == "" {
		doc.Type = DocumentTypeState
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readStateFrom(r io.Reader) (StateDocument, error) {
	var doc StateDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return StateDocument{}, fmt.Errorf("decode: %w", err)
	}
	if doc.Type != DocumentTypeState {
		return StateDocument{}, fmt.Errorf("%w: type %q", ErrNotStateDocument, doc.Type)
	}
	return doc, nil
}
