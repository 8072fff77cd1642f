// Package store implements the local persistence layer on a single bbolt
// file: connection configs, query history, editor tabs, and saved queries.
// Result payloads and secrets are never written; tabs are stripped before
// storage and credentials live in the keyring.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/models"
)

var (
	bucketConnections  = []byte("connections")
	bucketHistory      = []byte("history")
	bucketTabs         = []byte("tabs")
	bucketSavedQueries = []byte("saved_queries")
)

// historyKey is the single key the history list lives under. The list is
// capped and always replaced wholesale, so one value is simpler than a
// bucket of entries.
var historyKey = []byte("items")

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the bbolt-backed persistence layer.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens the store file, creating it and its buckets if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketConnections, bucketHistory, bucketTabs, bucketSavedQueries} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk location of the store file.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the store file is still readable.
func (s *Store) Ping() error {
	return s.db.View(func(tx *bolt.Tx) error {
		return nil
	})
}

// SaveConnection persists a connection config. The stored copy is always
// redacted; passwords and API keys belong in the keyring.
func (s *Store) SaveConnection(config adapter.ConnectionConfig) error {
	if config.ConnectionID == "" {
		return fmt.Errorf("connection id is required")
	}

	raw, err := json.Marshal(config.Redacted())
	if err != nil {
		return fmt.Errorf("failed to encode connection: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConnections).Put([]byte(config.ConnectionID), raw)
	})
}

// GetConnection returns one stored connection config.
func (s *Store) GetConnection(id string) (adapter.ConnectionConfig, error) {
	var config adapter.ConnectionConfig
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketConnections).Get([]byte(id))
		if raw == nil {
			return fmt.Errorf("connection %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(raw, &config)
	})
	return config, err
}

// ListConnections returns all stored connection configs, sorted by name.
func (s *Store) ListConnections() ([]adapter.ConnectionConfig, error) {
	var configs []adapter.ConnectionConfig
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConnections).ForEach(func(k, v []byte) error {
			var config adapter.ConnectionConfig
			if err := json.Unmarshal(v, &config); err != nil {
				return fmt.Errorf("failed to decode connection %s: %w", k, err)
			}
			configs = append(configs, config)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(configs, func(i, j int) bool {
		if configs[i].Name != configs[j].Name {
			return configs[i].Name < configs[j].Name
		}
		return configs[i].ConnectionID < configs[j].ConnectionID
	})
	return configs, nil
}

// DeleteConnection removes one stored connection config.
func (s *Store) DeleteConnection(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketConnections)
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("connection %s: %w", id, ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}

// SaveHistory replaces the stored history list.
func (s *Store) SaveHistory(items []models.QueryHistoryItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHistory).Put(historyKey, raw)
	})
}

// LoadHistory returns the stored history list, newest first. A store that
// has never seen history yields an empty list.
func (s *Store) LoadHistory() ([]models.QueryHistoryItem, error) {
	var items []models.QueryHistoryItem
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketHistory).Get(historyKey)
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &items)
	})
	return items, err
}

// SaveTab persists one editor tab with its result payload stripped.
func (s *Store) SaveTab(tab models.Tab) error {
	if tab.ID == "" {
		return fmt.Errorf("tab id is required")
	}

	raw, err := json.Marshal(tab.StripResult())
	if err != nil {
		return fmt.Errorf("failed to encode tab: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTabs).Put([]byte(tab.ID), raw)
	})
}

// GetTab returns one stored tab.
func (s *Store) GetTab(id string) (models.Tab, error) {
	var tab models.Tab
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTabs).Get([]byte(id))
		if raw == nil {
			return fmt.Errorf("tab %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(raw, &tab)
	})
	return tab, err
}

// ListTabs returns all stored tabs in creation order.
func (s *Store) ListTabs() ([]models.Tab, error) {
	var tabs []models.Tab
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTabs).ForEach(func(k, v []byte) error {
			var tab models.Tab
			if err := json.Unmarshal(v, &tab); err != nil {
				return fmt.Errorf("failed to decode tab %s: %w", k, err)
			}
			tabs = append(tabs, tab)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tabs, func(i, j int) bool {
		if !tabs[i].Created.Equal(tabs[j].Created) {
			return tabs[i].Created.Before(tabs[j].Created)
		}
		return tabs[i].ID < tabs[j].ID
	})
	return tabs, nil
}

// ReplaceTabs swaps the stored tab list wholesale, stripping transient
// result payloads before write.
func (s *Store) ReplaceTabs(tabs []models.Tab) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketTabs); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket(bucketTabs)
		if err != nil {
			return err
		}

		for _, tab := range tabs {
			if tab.ID == "" {
				return fmt.Errorf("tab id is required")
			}
			raw, err := json.Marshal(tab.StripResult())
			if err != nil {
				return fmt.Errorf("failed to encode tab: %w", err)
			}
			if err := bucket.Put([]byte(tab.ID), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTab removes one stored tab.
func (s *Store) DeleteTab(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTabs)
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("tab %s: %w", id, ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}

// SaveQuery persists one saved query.
func (s *Store) SaveQuery(query models.SavedQuery) error {
	if query.ID == "" {
		return fmt.Errorf("query id is required")
	}

	raw, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("failed to encode saved query: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSavedQueries).Put([]byte(query.ID), raw)
	})
}

// GetQuery returns one saved query.
func (s *Store) GetQuery(id string) (models.SavedQuery, error) {
	var query models.SavedQuery
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSavedQueries).Get([]byte(id))
		if raw == nil {
			return fmt.Errorf("saved query %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(raw, &query)
	})
	return query, err
}

// ListQueries returns all saved queries, sorted by name.
func (s *Store) ListQueries() ([]models.SavedQuery, error) {
	var queries []models.SavedQuery
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSavedQueries).ForEach(func(k, v []byte) error {
			var query models.SavedQuery
			if err := json.Unmarshal(v, &query); err != nil {
				return fmt.Errorf("failed to decode saved query %s: %w", k, err)
			}
			queries = append(queries, query)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(queries, func(i, j int) bool {
		if queries[i].Name != queries[j].Name {
			return queries[i].Name < queries[j].Name
		}
		return queries[i].ID < queries[j].ID
	})
	return queries, nil
}

// DeleteQuery removes one saved query.
func (s *Store) DeleteQuery(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketSavedQueries)
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("saved query %s: %w", id, ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}
