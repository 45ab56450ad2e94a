package repositories

import (
	"fmt"
	"time"

	"inventoritoko/internal/models"

	bolt "go.etcd.io/bbolt"
)

// BoltTokenRepository keeps the session in a bbolt file so it survives restarts.
type BoltTokenRepository struct {
	db *bolt.DB
}

// NewBoltTokenRepository opens (or creates) the session file at path.
func NewBoltTokenRepository(path string) (*BoltTokenRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open token store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(TokenBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", TokenBucket, err)
	}
	return &BoltTokenRepository{db: db}, nil
}

// Load reads the session in one read transaction.
func (r *BoltTokenRepository) Load() (*models.AuthSession, error) {
	var session *models.AuthSession
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(TokenBucket))
		token := b.Get([]byte(TokenKey))
		if len(token) == 0 {
			return nil
		}
		// bbolt values are only valid inside the transaction.
		session = &models.AuthSession{
			Token: string(token),
			Name:  string(b.Get([]byte(NameKey))),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// Token returns the bearer token or an empty string.
func (r *BoltTokenRepository) Token() (string, error) {
	session, err := r.Load()
	if err != nil || session == nil {
		return "", err
	}
	return session.Token, nil
}

// Save replaces the stored session.
func (r *BoltTokenRepository) Save(session models.AuthSession) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(TokenBucket))
		if err := b.Put([]byte(TokenKey), []byte(session.Token)); err != nil {
			return err
		}
		return b.Put([]byte(NameKey), []byte(session.Name))
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the session. Clearing an empty slot succeeds.
func (r *BoltTokenRepository) Clear() error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(TokenBucket))
		if err := b.Delete([]byte(TokenKey)); err != nil {
			return err
		}
		return b.Delete([]byte(NameKey))
	})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close releases the file lock.
func (r *BoltTokenRepository) Close() error {
	return r.db.Close()
}
