package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// BoltDB wraps bolt database operations for credential and activity storage.
type BoltDB struct {
	db     *bbolt.DB
	logger *zap.SugaredLogger
}

// NewBoltDB opens (or creates) the credential database under dataDir.
func NewBoltDB(dataDir string, logger *zap.SugaredLogger) (*BoltDB, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	dbPath := filepath.Join(dataDir, "credentials.db")

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	boltDB := &BoltDB{
		db:     db,
		logger: logger,
	}

	if err := boltDB.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	logger.Debugw("credential database opened", "path", dbPath)
	return boltDB, nil
}

// Close closes the database
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// initBuckets creates required buckets and sets the schema version
func (b *BoltDB) initBuckets() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		buckets := []string{
			CredentialsBucket,
			ActivityBucket,
			MetaBucket,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		metaBucket := tx.Bucket([]byte(MetaBucket))
		versionBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(versionBytes, CurrentSchemaVersion)
		return metaBucket.Put([]byte(SchemaVersionKey), versionBytes)
	})
}

// GetSchemaVersion returns the current schema version
func (b *BoltDB) GetSchemaVersion() (uint64, error) {
	var version uint64
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(MetaBucket))
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		versionBytes := bucket.Get([]byte(SchemaVersionKey))
		if versionBytes == nil {
			version = 0
			return nil
		}

		version = binary.LittleEndian.Uint64(versionBytes)
		return nil
	})

	return version, err
}

// credentialKey builds the bucket key for a (provider, user) pair.
func credentialKey(provider, userID string) []byte {
	return []byte(provider + "/" + userID)
}

// Credential operations

// GetCredential retrieves the stored credential for a (provider, user) pair.
// Returns ErrNotFound when no record exists.
func (b *BoltDB) GetCredential(provider, userID string) (*CredentialRecord, error) {
	var record *CredentialRecord

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(CredentialsBucket))
		data := bucket.Get(credentialKey(provider, userID))
		if data == nil {
			return ErrNotFound
		}

		record = &CredentialRecord{}
		return json.Unmarshal(data, record)
	})

	return record, err
}

// PutCredential saves a credential record, overwriting any prior record for
// the same (provider, user) pair. Write failures are fatal and surfaced to
// the caller; they are never retried here.
func (b *BoltDB) PutCredential(record *CredentialRecord) error {
	now := time.Now()
	if record.Created.IsZero() {
		record.Created = now
	}
	record.Updated = now

	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(CredentialsBucket))
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return bucket.Put(credentialKey(record.Provider, record.UserID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save credential for %s/%s: %w", record.Provider, record.UserID, err)
	}
	return nil
}

// DeleteCredential removes the credential for a (provider, user) pair.
// Deletion only happens on explicit user action, never automatically.
func (b *BoltDB) DeleteCredential(provider, userID string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(CredentialsBucket))
		return bucket.Delete(credentialKey(provider, userID))
	})
}

// ListCredentials returns all stored credential records.
func (b *BoltDB) ListCredentials() ([]*CredentialRecord, error) {
	var records []*CredentialRecord

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(CredentialsBucket))
		return bucket.ForEach(func(_, v []byte) error {
			record := &CredentialRecord{}
			if err := json.Unmarshal(v, record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})

	return records, err
}

// Activity operations

// AppendActivity records one tool invocation. Keys are timestamp-prefixed so
// a cursor scan returns records in chronological order.
func (b *BoltDB) AppendActivity(record *ActivityRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ActivityBucket))
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s/%s", record.Timestamp.UTC().Format(time.RFC3339Nano), record.ID)
		return bucket.Put([]byte(key), data)
	})
}

// ListActivity returns up to limit most recent activity records, newest first.
func (b *BoltDB) ListActivity(limit int) ([]*ActivityRecord, error) {
	var records []*ActivityRecord

	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(ActivityBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			record := &ActivityRecord{}
			if err := json.Unmarshal(v, record); err != nil {
				return err
			}
			records = append(records, record)
			if limit > 0 && len(records) >= limit {
				return nil
			}
		}
		return nil
	})

	return records, err
}

// Backup creates a backup of the database
func (b *BoltDB) Backup(destPath string) error {
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.CopyFile(destPath, 0600)
	})
	if err != nil {
		return fmt.Errorf("failed to back up credential database: %w", err)
	}
	b.logger.Infow("credential database backed up", "dest", destPath)
	return nil
}
