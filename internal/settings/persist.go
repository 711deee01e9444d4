package settings

import (
	"context"
	"fmt"
	"log/slog"
)

// Version is written alongside every saved blob.
const Version = 2

// BlobStore holds the single settings blob. store.SettingsRepo satisfies it.
type BlobStore interface {
	Load(ctx context.Context) (data []byte, version int, err error)
	Save(ctx context.Context, data []byte, version int) error
}

// Load reads the saved settings, or Defaults when nothing was saved.
// Migrated blobs are written back in the current shape.
func Load(ctx context.Context, bs BlobStore) (QuizSettings, error) {
	data, version, err := bs.Load(ctx)
	if err != nil {
		return Defaults(), err
	}
	s, migrated, err := Decode(data)
	if err != nil {
		return Defaults(), err
	}
	if migrated || (data != nil && version < Version) {
		slog.Debug("migrating stored settings", "from_version", version, "to_version", Version)
		if err := Save(ctx, bs, s); err != nil {
			return s, fmt.Errorf("write migrated settings: %w", err)
		}
	}
	return s, nil
}

// Save validates and stores s.
func Save(ctx context.Context, bs BlobStore, s QuizSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return bs.Save(ctx, data, Version)
}
