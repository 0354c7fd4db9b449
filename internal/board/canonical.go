package board

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DomainBoard is the domain prefix used by Fingerprint. The version suffix
// leaves room for a future change of the canonical form.
const DomainBoard = "kanban/board/v1"

// MarshalCanonical produces the canonical JSON encoding of b.
//
// Differences from json.Marshal:
//  1. No HTML escaping (< > & are NOT escaped)
//  2. Nil TaskIDs are written as [] instead of null
//  3. No trailing newline
//
// Strings are written as stored. Content is normalized when it enters the
// board, and ids and titles are opaque, so decoding the output yields a
// board Equal to b. Map keys are sorted, so two boards that are Equal
// encode to the same bytes. This is the form used for snapshots,
// fingerprints and golden files.
func MarshalCanonical(b *Board) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("null is forbidden in canonical board JSON")
	}
	return encodeNoEscape(canonicalize(b))
}

// Fingerprint returns a SHA-256 digest of the canonical encoding of b with
// domain separation: SHA256(DomainBoard + 0x00 + canonical).
func Fingerprint(b *Board) (string, error) {
	data, err := MarshalCanonical(b)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainBoard))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalize replaces nil TaskIDs with empty slices. Columns are copied;
// tasks and ids are shared with b.
func canonicalize(b *Board) *Board {
	out := &Board{
		Tasks:       b.Tasks,
		Columns:     make(map[string]Column, len(b.Columns)),
		ColumnOrder: b.ColumnOrder,
	}
	for id, c := range b.Columns {
		if c.TaskIDs == nil {
			c.TaskIDs = []string{}
		}
		out.Columns[id] = c
	}
	if out.Tasks == nil {
		out.Tasks = map[string]Task{}
	}
	if out.ColumnOrder == nil {
		out.ColumnOrder = []string{}
	}
	return out
}

func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder adds a trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
