// Package audit records the outcome of every reconciliation attempt in a
// JetStream KV bucket so administrative tooling can inspect syndication
// history and decide what to retry. Audit writes are best-effort: losing an
// audit entry never fails a sync.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/natsclient"
	"github.com/c360/syndicate/pkg/retry"
)

// Bucket is the KV bucket holding audit entries.
const Bucket = "syndicate_audit"

// Entry is one recorded reconciliation attempt. The latest attempt per
// (profile, dataset) pair is kept; KV history preserves prior attempts up to
// the bucket's history depth.
type Entry struct {
	ProfileID string    `json:"profile_id"`
	PackageID string    `json:"package_id"`
	Topic     string    `json:"topic"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Key returns the KV key for the entry's (profile, dataset) pair.
func (e Entry) Key() string {
	return Key(e.ProfileID, e.PackageID)
}

// Key builds the KV key for a (profile, dataset) pair.
func Key(profileID, packageID string) string {
	return sanitize(profileID) + "." + sanitize(packageID)
}

// sanitize maps ids onto the KV key alphabet.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// Store persists audit entries.
type Store struct {
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewStore opens (or creates) the audit bucket on the given client.
func NewStore(ctx context.Context, client *natsclient.Client, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := client.EnsureKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  Bucket,
		History: 10,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Store", "NewStore", "open audit bucket")
	}

	return &Store{kv: kv, logger: logger}, nil
}

// Record writes the entry, retrying briefly on transient failure. Errors are
// logged, never returned: auditing must not affect the sync outcome.
func (s *Store) Record(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("audit entry not serializable", "error", err)
		return
	}

	err = retry.Do(ctx, retry.Quick(), func() error {
		_, putErr := s.kv.Put(ctx, entry.Key(), data)
		return putErr
	})
	if err != nil {
		s.logger.Warn("audit entry dropped",
			"profile", entry.ProfileID,
			"dataset", entry.PackageID,
			"error", err)
	}
}

// Get returns the latest entry for a (profile, dataset) pair.
func (s *Store) Get(ctx context.Context, profileID, packageID string) (*Entry, error) {
	kvEntry, err := s.kv.Get(ctx, Key(profileID, packageID))
	if err != nil {
		if natsclient.IsKVNotFound(err) {
			return nil, fmt.Errorf("audit entry for %s/%s: %w", profileID, packageID, errors.ErrExtraNotFound)
		}
		return nil, errors.WrapTransient(err, "Store", "Get", "read audit entry")
	}

	var entry Entry
	if err := json.Unmarshal(kvEntry.Value(), &entry); err != nil {
		return nil, errors.WrapInvalid(err, "Store", "Get", "decode audit entry")
	}
	return &entry, nil
}

// List returns the latest entries for every dataset recorded under the
// profile.
func (s *Store) List(ctx context.Context, profileID string) ([]Entry, error) {
	lister, err := s.kv.ListKeysFiltered(ctx, sanitize(profileID)+".*")
	if err != nil {
		return nil, errors.WrapTransient(err, "Store", "List", "list audit keys")
	}

	var entries []Entry
	for key := range lister.Keys() {
		kvEntry, err := s.kv.Get(ctx, key)
		if err != nil {
			if natsclient.IsKVNotFound(err) {
				continue
			}
			return nil, errors.WrapTransient(err, "Store", "List", "read audit entry")
		}
		var entry Entry
		if err := json.Unmarshal(kvEntry.Value(), &entry); err != nil {
			s.logger.Warn("skipping undecodable audit entry", "key", key, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
