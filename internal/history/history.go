// Package history keeps an append-only log of finished invocations in a bbolt file.
// It is never read before sending a request; identical requests are always re-sent.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

var bucketResults = []byte("results")

var ErrNotFound = errors.New("history entry not found")

type Store struct {
	db  *bolt.DB
	log *zap.Logger
}

var _ orchestrator.Recorder = (*Store)(nil)

func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResults)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores r under its id. Ids are uuid v7, so key order is start order.
func (s *Store) Record(r orchestrator.Result) error {
	if r.ID == "" {
		return errors.New("result has no id")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Put([]byte(r.ID), b)
	})
	if err != nil {
		return fmt.Errorf("write result %s: %w", r.ID, err)
	}
	s.log.Debug("recorded result", zap.String("id", r.ID), zap.String("outcome", string(r.Outcome)))
	return nil
}

func (s *Store) Get(id string) (orchestrator.Result, error) {
	var r orchestrator.Result
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketResults).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return decode(v, &r)
	})
	return r, err
}

// List returns up to limit results, newest first. limit <= 0 returns everything.
func (s *Store) List(limit int) ([]orchestrator.Result, error) {
	var out []orchestrator.Result
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketResults).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r orchestrator.Result
			if err := decode(v, &r); err != nil {
				s.log.Warn("skipping unreadable history entry", zap.ByteString("id", k), zap.Error(err))
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func decode(v []byte, r *orchestrator.Result) error {
	if err := json.Unmarshal(v, r); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	r.Elapsed = time.Duration(r.ElapsedMillis) * time.Millisecond
	return nil
}
