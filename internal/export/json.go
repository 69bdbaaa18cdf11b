// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

type jsonEntry struct {
	Type      string  `json:"type"`
	Content   string  `json:"content"`
	Timestamp *string `json:"timestamp,omitempty"`
}

// JSONExporter writes the flat message list. Without IncludeTimestamps
// the timestamp field is left out.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	out := make([]jsonEntry, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		item := jsonEntry{Type: entry.Type, Content: entry.Content}
		if e.options.IncludeTimestamps {
			label := entry.TimeLabel()
			item.Timestamp = &label
		}
		out = append(out, item)
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
