package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// RetryInterval is how long a failed primary is skipped before it is tried again.
const RetryInterval = time.Minute

// DirtyKey holds, in the fallback store, the keys primary has not seen yet,
// so a restart during an outage does not forget them.
const DirtyKey = "failover:dirty"

// FailoverStore serves from primary and switches to fallback while primary is failing.
// Writes are mirrored to fallback so it stays usable when primary goes away. Keys
// written to fallback alone are copied back to primary before primary serves again.
type FailoverStore struct {
	primary  Store
	fallback Store
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time

	dirtyMu     sync.Mutex
	dirty       map[string]struct{}
	dirtyLoaded bool
}

func NewFailoverStore(primary, fallback Store, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		dirty:    make(map[string]struct{}),
	}
}

func (s *FailoverStore) usePrimary() bool {
	if !s.isDown.Load() {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastCheck) >= RetryInterval
}

// primaryReady reports whether primary may serve, resyncing it first if needed.
func (s *FailoverStore) primaryReady(ctx context.Context) bool {
	if !s.usePrimary() {
		return false
	}
	if err := s.resync(ctx); err != nil {
		s.markDown("resync", err)
		return false
	}
	return true
}

func (s *FailoverStore) markDown(op string, err error) {
	if !s.isDown.Load() {
		s.logger.Warn().Err(err).Str("op", op).Msg("Primary store failed, switching to fallback")
	}
	s.mu.Lock()
	s.lastCheck = time.Now()
	s.mu.Unlock()
	s.isDown.Store(true)
}

func (s *FailoverStore) markUp() {
	if s.isDown.Swap(false) {
		s.logger.Info().Msg("Primary store recovered")
	}
}

func (s *FailoverStore) markDirty(ctx context.Context, key string) {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	if err := s.loadDirty(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load dirty key list")
	}
	if _, ok := s.dirty[key]; ok {
		return
	}
	s.dirty[key] = struct{}{}
	s.saveDirty(ctx)
}

// loadDirty merges the persisted dirty keys once. Callers hold dirtyMu.
func (s *FailoverStore) loadDirty(ctx context.Context) error {
	if s.dirtyLoaded {
		return nil
	}
	raw, err := s.fallback.Get(ctx, DirtyKey)
	if errors.Is(err, ErrNotFound) {
		s.dirtyLoaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read dirty keys: %w", err)
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		s.logger.Error().Err(err).Msg("Ignoring unreadable dirty key list")
	}
	for _, k := range keys {
		s.dirty[k] = struct{}{}
	}
	s.dirtyLoaded = true
	return nil
}

// saveDirty persists the dirty set to fallback. Callers hold dirtyMu.
func (s *FailoverStore) saveDirty(ctx context.Context) {
	var err error
	if len(s.dirty) == 0 {
		err = s.fallback.Remove(ctx, DirtyKey)
	} else {
		keys := make([]string, 0, len(s.dirty))
		for k := range s.dirty {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		data, _ := json.Marshal(keys)
		err = s.fallback.Set(ctx, DirtyKey, string(data))
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist dirty key list")
	}
}

// resync copies every key changed while primary was skipped from fallback to primary.
func (s *FailoverStore) resync(ctx context.Context) error {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()

	if err := s.loadDirty(ctx); err != nil {
		return err
	}
	if len(s.dirty) == 0 {
		return nil
	}
	defer s.saveDirty(ctx)

	for key := range s.dirty {
		val, err := s.fallback.Get(ctx, key)
		switch {
		case errors.Is(err, ErrNotFound):
			err = s.primary.Remove(ctx, key)
		case err != nil:
			return fmt.Errorf("read %s from fallback: %w", key, err)
		default:
			err = s.primary.Set(ctx, key, val)
		}
		if err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}
		delete(s.dirty, key)
		s.logger.Info().Str("key", key).Msg("Restored key on primary store")
	}
	return nil
}

func (s *FailoverStore) Get(ctx context.Context, key string) (string, error) {
	if s.primaryReady(ctx) {
		val, err := s.primary.Get(ctx, key)
		if err == nil {
			s.markUp()
			return val, nil
		}
		if errors.Is(err, ErrNotFound) {
			s.markUp()
			return s.restore(ctx, key)
		}
		s.markDown("get", err)
	}
	return s.fallback.Get(ctx, key)
}

// restore serves a key primary does not have from fallback and copies it back.
func (s *FailoverStore) restore(ctx context.Context, key string) (string, error) {
	val, err := s.fallback.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if perr := s.primary.Set(ctx, key, val); perr != nil {
		s.logger.Warn().Err(perr).Str("key", key).Msg("Failed to copy fallback value to primary store")
		s.markDirty(ctx, key)
	} else {
		s.logger.Info().Str("key", key).Msg("Primary store was missing key, restored from fallback")
	}
	return val, nil
}

func (s *FailoverStore) Set(ctx context.Context, key, value string) error {
	if s.primaryReady(ctx) {
		if err := s.primary.Set(ctx, key, value); err != nil {
			s.markDown("set", err)
		} else {
			s.markUp()
			if ferr := s.fallback.Set(ctx, key, value); ferr != nil {
				s.logger.Warn().Err(ferr).Str("key", key).Msg("Failed to mirror write to fallback store")
			}
			return nil
		}
	}
	s.markDirty(ctx, key)
	return s.fallback.Set(ctx, key, value)
}

func (s *FailoverStore) Remove(ctx context.Context, key string) error {
	if s.primaryReady(ctx) {
		if err := s.primary.Remove(ctx, key); err != nil {
			s.markDown("remove", err)
		} else {
			s.markUp()
			if ferr := s.fallback.Remove(ctx, key); ferr != nil {
				s.logger.Warn().Err(ferr).Str("key", key).Msg("Failed to mirror remove to fallback store")
			}
			return nil
		}
	}
	s.markDirty(ctx, key)
	return s.fallback.Remove(ctx, key)
}

// Ping reports an error only when both stores are unreachable.
func (s *FailoverStore) Ping(ctx context.Context) error {
	perr := ping(ctx, s.primary)
	if perr == nil {
		return nil
	}
	if ferr := ping(ctx, s.fallback); ferr != nil {
		return errors.Join(perr, ferr)
	}
	return nil
}

// Degraded reports whether reads are currently served by the fallback.
func (s *FailoverStore) Degraded() bool {
	return s.isDown.Load()
}

func ping(ctx context.Context, st Store) error {
	if p, ok := st.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
