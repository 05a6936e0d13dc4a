// Package catalog defines the flat, JSON-serializable interchange records
// exchanged between the model exporter, external tools, and the vetter.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// PartRecord is one flattened part. Unlike the parse tree, a record list has
// no ownership structure: Parent and Children are denormalized name
// references that the vetter must reconcile independently.
type PartRecord struct {
	Type        string             `json:"type"`
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Dimensions  map[string]any     `json:"dimensions"`
	Attributes  map[string]float64 `json:"attributes"`
	Metadata    map[string]any     `json:"metadata"`
	MaterialRef string             `json:"materialRef,omitempty"`
	Parent      string             `json:"parent,omitempty"`
	Children    []string           `json:"children,omitempty"`
}

// MaterialRecord is one exported material definition: the required id plus
// numeric properties (already SI) and string traceability fields.
type MaterialRecord struct {
	MaterialID string             `json:"materialId"`
	Properties map[string]float64 `json:"properties,omitempty"`
	Traces     map[string]string  `json:"traces,omitempty"`
}

// MaterialsDocument is the on-disk wrapper for a materials export.
type MaterialsDocument struct {
	Materials []MaterialRecord `json:"materials"`
}

// ReadRecords loads a part-record list from a JSON file. The top level may be
// either a bare array or an object carrying the array under a "parts" key.
func ReadRecords(path string) ([]PartRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading parts file: %w", err)
	}
	return DecodeRecords(data)
}

// DecodeRecords parses a part-record list from JSON text.
func DecodeRecords(data []byte) ([]PartRecord, error) {
	var records []PartRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Parts []PartRecord `json:"parts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parts JSON must be a list or an object with a \"parts\" key: %w", err)
	}
	if wrapped.Parts == nil {
		return nil, fmt.Errorf("parts JSON object has no \"parts\" key")
	}
	return wrapped.Parts, nil
}

// WriteRecords writes a part-record list as pretty-printed JSON.
func WriteRecords(path string, records []PartRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteMaterials writes a materials document as pretty-printed JSON.
func WriteMaterials(path string, materials []MaterialRecord) error {
	data, err := json.MarshalIndent(MaterialsDocument{Materials: materials}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
