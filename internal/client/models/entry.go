// Package models defines the plaintext domain records the journal works
// with on-device. Local storage is deliberately unencrypted; encryption
// happens only at the sync boundary.
package models

// Entry is one day's journal entry.
//
// ID is a stable client-generated identifier. Date ("2006-01-02") is
// non-sensitive and stays in cleartext on the wire for range queries.
// CreatedAt/UpdatedAt are unix milliseconds; UpdatedAt is assigned at the
// moment of the local mutation and is the sole conflict-ordering key.
type Entry struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	Content    string          `json:"content"`
	Tags       []string        `json:"tags,omitempty"`
	Habits     map[string]bool `json:"habits,omitempty"`
	Highlights []string        `json:"highlights,omitempty"`
	WordCount  int             `json:"wordCount"`
	CreatedAt  int64           `json:"createdAt"`
	UpdatedAt  int64           `json:"updatedAt"`
	Deleted    bool            `json:"deleted,omitempty"`
}

// Review is a periodic (weekly or monthly) review.
// Period is the non-sensitive range marker, e.g. "2026-W35" or "2026-08".
type Review struct {
	ID         string   `json:"id"`
	Period     string   `json:"period"`
	Content    string   `json:"content"`
	Mood       int      `json:"mood,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
	Deleted    bool     `json:"deleted,omitempty"`
}

// Settings is the free-form preferences blob carried in export bundles.
type Settings map[string]any

// SyncConfig is the durable, non-sensitive sync state persisted locally.
// The session passphrase is never part of it.
type SyncConfig struct {
	Enabled                  bool   `json:"enabled"`
	UserHash                 string `json:"userHash"`
	PasswordVerificationHash string `json:"passwordVerificationHash"`
	LastSyncAt               int64  `json:"lastSyncAt"`
	DeviceID                 string `json:"deviceId"`
}
