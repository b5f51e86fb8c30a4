// Package manifest wraps scan results in a stamped, encodable document.
package manifest

import (
	"encoding/hex"

	"github.com/Alia5/cscan/internal/meta"
	"github.com/Alia5/cscan/internal/version"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const Tool = "cscan"

// Manifest is the exported surface of one scanned file.
type Manifest struct {
	RunID       string `json:"runId"`
	Tool        string `json:"tool"`
	Version     string `json:"version"`
	File        string `json:"file"`
	Fingerprint string `json:"fingerprint"`

	Counts  map[meta.EntryKind]int `json:"counts"`
	Entries []meta.Entry           `json:"entries"`
}

// NewRunID returns the identifier shared by every manifest of one invocation.
func NewRunID() string {
	return uuid.New().String()
}

// New stamps unit. src is the file content the unit was scanned from.
func New(runID string, unit *meta.Unit, src []byte) *Manifest {
	return &Manifest{
		RunID:       runID,
		Tool:        Tool,
		Version:     version.MustGet(),
		File:        unit.File,
		Fingerprint: Fingerprint(src),
		Counts:      unit.Counts(),
		Entries:     unit.Entries,
	}
}

// Fingerprint is the hex BLAKE2b-256 digest of src.
func Fingerprint(src []byte) string {
	sum := blake2b.Sum256(src)
	return hex.EncodeToString(sum[:])
}
