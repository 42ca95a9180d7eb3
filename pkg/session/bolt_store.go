package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/boltdb/bolt"
)

var sessionsBucket = []byte("sessions")

// BoltStore keeps sessions in a local bolt file. It suits a single instance
// deployment without a shared session collection.
type BoltStore struct {
	db       *bolt.DB
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewBoltStore(path string, sweepInterval time.Duration) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session file %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	store := &BoltStore{db: db, stopCh: make(chan struct{})}
	go store.sweep(sweepInterval)

	return store, nil
}

func (s *BoltStore) Get(_ context.Context, id string) (*Session, error) {
	var sess *Session

	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(sessionsBucket).Get([]byte(id))
		if value == nil {
			return nil
		}

		sess = &Session{}
		return json.Unmarshal(value, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if sess == nil || sess.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *BoltStore) Save(_ context.Context, sess *Session) error {
	value, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(sess.ID), value)
	})
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(id))
	})
}

func (s *BoltStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.deleteExpired(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *BoltStore) deleteExpired(now time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)

		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var sess Session
			if err := json.Unmarshal(v, &sess); err != nil || sess.Expired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close stops the sweeper and releases the file lock.
func (s *BoltStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	return s.db.Close()
}
