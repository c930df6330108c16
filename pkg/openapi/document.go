package openapi

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed recommender.yaml
var embeddedContract []byte

// EmbeddedLocation names the built-in contract in logs and errors.
const EmbeddedLocation = "embedded:recommender.yaml"

// Document wraps a raw OpenAPI payload and where it came from.
type Document struct {
	location string
	raw      []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(location string, raw []byte) (Document, error) {
	if location == "" {
		return Document{}, errors.New("openapi: document location is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{location: location, raw: append([]byte(nil), raw...)}, nil
}

// EmbeddedDocument returns the contract bundled with the binary.
func EmbeddedDocument() Document {
	return Document{location: EmbeddedLocation, raw: embeddedContract}
}

// DocumentFromFile reads a contract from disk.
func DocumentFromFile(path string) (Document, error) {
	clean := filepath.Clean(path)
	raw, err := os.ReadFile(clean)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: read %s: %w", clean, err)
	}
	return NewDocument(clean, raw)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	return d.location
}

// Raw returns a copy of the OpenAPI payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}
