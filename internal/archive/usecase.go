// Package archive keeps a long-term record of scored products.
package archive

import "livescore/internal/analysis"

// Archive stores analyzed snapshots outside the in-memory history.
type Archive interface {
	Append(snap *analysis.Snapshot)
	Close() error
}

// Nop discards everything. It is used when no archive file is configured.
type Nop struct{}

func (Nop) Append(*analysis.Snapshot) {}

func (Nop) Close() error { return nil }
