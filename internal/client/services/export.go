package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/client/repositories/entries"
	"github.com/inkwell-app/inkwell/internal/client/repositories/reviews"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/cryptox"
)

// bundleVersion is the export file format version.
const bundleVersion = 1

// Bundle is the plaintext export file.
type Bundle struct {
	Version    int              `json:"version"`
	ExportedAt string           `json:"exportedAt"`
	Entries    []*models.Entry  `json:"entries"`
	Settings   models.Settings  `json:"settings"`
	Reviews    []*models.Review `json:"reviews"`
}

// encryptedBundle wraps a whole serialized Bundle in one EncryptionPayload.
type encryptedBundle struct {
	Version    int                        `json:"version"`
	Format     string                     `json:"format"`
	ExportedAt string                     `json:"exportedAt"`
	Payload    *cryptox.EncryptionPayload `json:"payload"`
}

const formatEncrypted = "encrypted"

// ImportStats reports how many records an import touched.
type ImportStats struct {
	Entries int
	Reviews int
}

// ExportService produces and consumes journal backup files: a plaintext
// JSON bundle, an encrypted bundle using the same payload scheme as sync,
// and (import only) a legacy bare base64-of-JSON format.
type ExportService struct {
	entryRepo  entries.Repository
	reviewRepo reviews.Repository
	settings   models.Settings

	now func() time.Time
}

func NewExportService(entryRepo entries.Repository, reviewRepo reviews.Repository, settings models.Settings) *ExportService {
	if settings == nil {
		settings = models.Settings{}
	}
	return &ExportService{
		entryRepo:  entryRepo,
		reviewRepo: reviewRepo,
		settings:   settings,
		now:        time.Now,
	}
}

// ExportPlain serializes all live entries and reviews to the plaintext
// bundle format.
func (s *ExportService) ExportPlain(ctx context.Context) ([]byte, error) {
	bundle, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(bundle, "", "  ")
}

// ExportEncrypted serializes the plaintext bundle and encrypts it wholesale
// with the given password.
func (s *ExportService) ExportEncrypted(ctx context.Context, password string) ([]byte, error) {
	bundle, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	plaintext, err := json.Marshal(bundle)
	if err != nil {
		return nil, err
	}
	payload, err := cryptox.Encrypt(plaintext, password)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(encryptedBundle{
		Version:    bundleVersion,
		Format:     formatEncrypted,
		ExportedAt: bundle.ExportedAt,
		Payload:    payload,
	}, "", "  ")
}

// Import restores a bundle in any supported format. Encrypted bundles need
// the password; the legacy bare base64-of-JSON format is still accepted but
// never produced.
func (s *ExportService) Import(ctx context.Context, data []byte, password string) (*ImportStats, error) {
	bundle, err := parseBundle(data, password)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	for _, e := range bundle.Entries {
		if err := s.entryRepo.Upsert(ctx, e); err != nil {
			return nil, fmt.Errorf("importing entry %s: %w", e.ID, err)
		}
		stats.Entries++
	}
	for _, v := range bundle.Reviews {
		if err := s.reviewRepo.Upsert(ctx, v); err != nil {
			return nil, fmt.Errorf("importing review %s: %w", v.ID, err)
		}
		stats.Reviews++
	}
	return stats, nil
}

func (s *ExportService) collect(ctx context.Context) (*Bundle, error) {
	allEntries, err := s.entryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting entries: %w", err)
	}
	allReviews, err := s.reviewRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting reviews: %w", err)
	}
	if allEntries == nil {
		allEntries = []*models.Entry{}
	}
	if allReviews == nil {
		allReviews = []*models.Review{}
	}
	return &Bundle{
		Version:    bundleVersion,
		ExportedAt: s.now().UTC().Format(time.RFC3339),
		Entries:    allEntries,
		Settings:   s.settings,
		Reviews:    allReviews,
	}, nil
}

func parseBundle(data []byte, password string) (*Bundle, error) {
	// Sniff the format before committing to a shape.
	var probe struct {
		Format  string          `json:"format"`
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err == nil {
		if probe.Format == formatEncrypted {
			return parseEncryptedBundle(data, password)
		}
		if probe.Version != nil {
			var bundle Bundle
			if err := json.Unmarshal(data, &bundle); err != nil {
				return nil, fmt.Errorf("invalid bundle: %w", err)
			}
			return &bundle, nil
		}
	}

	// Legacy format: the whole file is base64 of the plaintext bundle JSON.
	decoded, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("unrecognized import format")
	}
	var bundle Bundle
	if err := json.Unmarshal(decoded, &bundle); err != nil {
		return nil, fmt.Errorf("unrecognized import format")
	}
	return &bundle, nil
}

func parseEncryptedBundle(data []byte, password string) (*Bundle, error) {
	var enc encryptedBundle
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("invalid encrypted bundle: %w", err)
	}
	if enc.Payload == nil {
		return nil, fmt.Errorf("invalid encrypted bundle: missing payload")
	}
	if password == "" {
		return nil, common.ErrPasswordRequired
	}
	plaintext, err := cryptox.Decrypt(enc.Payload, password)
	if err != nil {
		return nil, err
	}
	var bundle Bundle
	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return nil, fmt.Errorf("invalid decrypted bundle: %w", err)
	}
	return &bundle, nil
}
