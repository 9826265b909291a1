package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/knit/internal/ui/style"
)

// messager describes an error that can report its own message without the chain.
// This matches the Message() method provided by zerr.Error (go.trai.ch/zerr v0.3.0+).
type messager interface {
	Message() string
}

// metadataer describes an error carrying structured key-value context.
type metadataer interface {
	Metadata() map[string]any
}

// errorEntry is one link of an error chain.
type errorEntry struct {
	Message  string
	Metadata map[string]any
}

func (e errorEntry) keys() []string {
	keys := make([]string, 0, len(e.Metadata))
	for key := range e.Metadata {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// collectErrorEntries walks the error chain. zerr errors contribute their own
// message and metadata; the first standard error contributes its full text and
// ends the walk. Joined errors are flattened in order. A zerr link that only
// annotates its cause hands its metadata to the next entry.
func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	var carried map[string]any
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			if joined, ok := current.(interface{ Unwrap() []error }); ok {
				parts := make([]errorEntry, 0, len(joined.Unwrap()))
				for _, part := range joined.Unwrap() {
					parts = append(parts, collectErrorEntries(part)...)
				}
				if len(parts) > 0 {
					parts[0].Metadata = mergeMetadata(carried, parts[0].Metadata)
					return append(entries, parts...)
				}
			}
			return append(entries, errorEntry{Message: current.Error(), Metadata: carried})
		}

		var metadata map[string]any
		if md, ok := current.(metadataer); ok {
			metadata = md.Metadata()
		}
		next := errors.Unwrap(current)
		if msg := m.Message(); next != nil && (msg == "" || msg == next.Error()) {
			carried = mergeMetadata(carried, metadata)
			current = next
			continue
		}

		entries = append(entries, errorEntry{Message: m.Message(), Metadata: mergeMetadata(carried, metadata)})
		carried = nil
		current = next
	}
	return entries
}

func mergeMetadata(outer, inner map[string]any) map[string]any {
	if len(outer) == 0 {
		return inner
	}
	merged := maps.Clone(inner)
	if merged == nil {
		merged = make(map[string]any, len(outer))
	}
	maps.Copy(merged, outer)
	return merged
}

// formatErrorEntries renders the chain as an "Error:" headline followed by
// its metadata and an indented "Caused by:" list.
func formatErrorEntries(entries []errorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		prefix, indent := "    "+style.Arrow+" ", "      "
		if i == 0 {
			prefix, indent = "Error: ", "       "
		} else if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}

		lines = append(lines, prefix+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, key := range entry.keys() {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}

	return strings.Join(lines, "\n")
}
