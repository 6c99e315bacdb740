// Package codec converts between plaintext domain records and their
// encrypted wire form. Only the sensitive subset of fields enters the
// ciphertext; identifier, date marker, update timestamp, and tombstone flag
// stay in cleartext so the server can order and range-query records without
// ever decrypting them.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/cryptox"
	"github.com/inkwell-app/inkwell/internal/wire"
)

// entrySecrets is the sensitive subset of an Entry, serialized as JSON
// before encryption.
type entrySecrets struct {
	Content    string          `json:"content"`
	Tags       []string        `json:"tags,omitempty"`
	Habits     map[string]bool `json:"habits,omitempty"`
	Highlights []string        `json:"highlights,omitempty"`
	WordCount  int             `json:"wordCount"`
	CreatedAt  int64           `json:"createdAt"`
}

type reviewSecrets struct {
	Content    string   `json:"content"`
	Mood       int      `json:"mood,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
	CreatedAt  int64    `json:"createdAt"`
}

// EncryptEntry wraps an entry for transport, re-encrypting it wholesale.
func EncryptEntry(e *models.Entry, password string) (*wire.Record, error) {
	secrets := entrySecrets{
		Content:    e.Content,
		Tags:       e.Tags,
		Habits:     e.Habits,
		Highlights: e.Highlights,
		WordCount:  e.WordCount,
		CreatedAt:  e.CreatedAt,
	}
	payload, err := seal(secrets, password)
	if err != nil {
		return nil, err
	}
	return &wire.Record{
		ID:        e.ID,
		Date:      e.Date,
		Data:      payload,
		UpdatedAt: e.UpdatedAt,
		Deleted:   e.Deleted,
	}, nil
}

// DecryptEntry reconstructs an entry from its wire form by merging the
// cleartext wrapper fields with the decrypted sensitive fields.
func DecryptEntry(r *wire.Record, password string) (*models.Entry, error) {
	var secrets entrySecrets
	if err := open(r.Data, password, &secrets); err != nil {
		return nil, err
	}
	return &models.Entry{
		ID:         r.ID,
		Date:       r.Date,
		Content:    secrets.Content,
		Tags:       secrets.Tags,
		Habits:     secrets.Habits,
		Highlights: secrets.Highlights,
		WordCount:  secrets.WordCount,
		CreatedAt:  secrets.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Deleted:    r.Deleted,
	}, nil
}

// EncryptReview wraps a periodic review for transport. The wire date field
// carries the period marker.
func EncryptReview(v *models.Review, password string) (*wire.Record, error) {
	secrets := reviewSecrets{
		Content:    v.Content,
		Mood:       v.Mood,
		Highlights: v.Highlights,
		CreatedAt:  v.CreatedAt,
	}
	payload, err := seal(secrets, password)
	if err != nil {
		return nil, err
	}
	return &wire.Record{
		ID:        v.ID,
		Date:      v.Period,
		Data:      payload,
		UpdatedAt: v.UpdatedAt,
		Deleted:   v.Deleted,
	}, nil
}

func DecryptReview(r *wire.Record, password string) (*models.Review, error) {
	var secrets reviewSecrets
	if err := open(r.Data, password, &secrets); err != nil {
		return nil, err
	}
	return &models.Review{
		ID:         r.ID,
		Period:     r.Date,
		Content:    secrets.Content,
		Mood:       secrets.Mood,
		Highlights: secrets.Highlights,
		CreatedAt:  secrets.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Deleted:    r.Deleted,
	}, nil
}

func seal(v any, password string) (*cryptox.EncryptionPayload, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializing record: %w", err)
	}
	return cryptox.Encrypt(plaintext, password)
}

func open(p *cryptox.EncryptionPayload, password string, v any) error {
	if p == nil {
		return fmt.Errorf("record has no payload")
	}
	plaintext, err := cryptox.Decrypt(p, password)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("parsing decrypted record: %w", err)
	}
	return nil
}
