// Package positions persists open positions across process restarts.
package positions

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

const (
	// DefaultDir keeps the position history next to the process.
	DefaultDir = "./wal/positions"

	positionKeyPrefix = "position_"
	segmentThreshold  = 1000
	maxSegments       = 100
	dirPermissions    = 0o755
)

// Store recovers an open Position across a process restart. A nil store is
// tolerated by callers: fresh start means Flat.
type Store interface {
	Save(accountID string, position *domain.Position) error
	Load(accountID string) (*domain.Position, error)
	Clear(accountID string) error
	Close() error
}

// WALStore persists position snapshots in a write-ahead log. The latest
// record per account wins; Clear writes an empty tombstone.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed position store.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure WAL directory %s", dir)
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "position_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init position WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save writes the current position snapshot for the account.
func (s *WALStore) Save(accountID string, position *domain.Position) error {
	if position == nil {
		return errors.New("cannot save nil position")
	}

	payload, err := json.Marshal(position)
	if err != nil {
		return errors.Wrap(err, "marshal position")
	}

	return s.write(accountID, payload)
}

// Load returns the last saved position for the account, nil when none.
func (s *WALStore) Load(accountID string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := positionKeyPrefix + accountID

	// the iterator yields records in write order, so the last match wins
	var latest []byte
	var found bool
	for msg := range s.wal.Iterator() {
		if msg.Key != key {
			continue
		}
		latest = msg.Value
		found = true
	}

	if !found || len(latest) == 0 {
		return nil, nil
	}

	var position domain.Position
	if err := json.Unmarshal(latest, &position); err != nil {
		return nil, errors.Wrap(err, "decode position snapshot")
	}
	return &position, nil
}

// Clear writes a tombstone so subsequent loads see no open position.
func (s *WALStore) Clear(accountID string) error {
	return s.write(accountID, nil)
}

func (s *WALStore) write(accountID string, payload []byte) error {
	if s == nil || s.wal == nil {
		return errors.New("position store is not initialized")
	}
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, positionKeyPrefix+accountID, payload)
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("position store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
