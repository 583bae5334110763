package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/recall/pkg/core"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse reads a document from r. Empty input is an empty document.
	Parse(r io.Reader) (core.Document, error)
	// Serialize converts the document to bytes.
	Serialize(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by file
// extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// SerializerFor picks the serializer for path by extension.
func SerializerFor(serializers map[string]Serializer, path string) (Serializer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	s, ok := serializers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported data file extension %q", ext)
	}
	return s, nil
}

// --- JSON Serializer ---

// JSONSerializer handles reading and writing JSON files.
type JSONSerializer struct {
	// Indent is used for pretty printing; empty writes compact JSON.
	Indent string
}

// NewJSONSerializer creates a JSON serializer with two-space indentation.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{Indent: "  "}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Document{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return core.Document{}, nil
	}

	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return core.Document{}, fmt.Errorf("invalid json: %w", err)
	}
	return fromWire(w), nil
}

func (s *JSONSerializer) Serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if s.Indent != "" {
		enc.SetIndent("", s.Indent)
	}
	if err := enc.Encode(toWire(doc)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- YAML Serializer ---

// YAMLSerializer handles reading and writing YAML files.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Document{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return core.Document{}, nil
	}

	var w documentWire
	if err := yaml.Unmarshal(data, &w); err != nil {
		return core.Document{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return fromWire(w), nil
}

func (s *YAMLSerializer) Serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toWire(doc)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
