package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/default.json
var defaultResume []byte

// Default returns the built-in record a session starts from when nothing is
// persisted.
func Default() Resume {
	var r Resume
	if err := json.Unmarshal(defaultResume, &r); err != nil {
		panic(fmt.Sprintf("model: embedded default resume is invalid: %v", err))
	}
	return r.Normalize()
}

// MarshalExchange serializes the record as 2-space indented JSON.
func MarshalExchange(r Resume) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ImportJSON parses an uploaded exchange file. Any failure wraps
// ErrInvalidFile; the caller keeps its current record in that case.
func ImportJSON(b []byte) (Resume, error) {
	if !json.Valid(b) {
		return Resume{}, fmt.Errorf("%w: not valid JSON", ErrInvalidFile)
	}
	if err := ValidateJSON(b); err != nil {
		return Resume{}, err
	}
	var r Resume
	if err := json.Unmarshal(b, &r); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return r.Normalize(), nil
}

// FileName derives an artifact name from the person's name: whitespace runs
// become underscores, and fallback is used when the name is blank.
func FileName(name, fallback, suffix, ext string) string {
	base := strings.Join(strings.Fields(name), "_")
	if base == "" {
		base = fallback
	}
	return base + suffix + "." + ext
}
