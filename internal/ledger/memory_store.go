package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"codeberg.org/studyhall/server/internal/quota"
)

type recordKey struct {
	userID string
	day    Day
}

type memoryEntry struct {
	mu     sync.Mutex
	record UsageRecord
	exists bool
}

// MemoryStore keeps records in process memory with one mutex per
// (user, day). Only valid for a single server process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[recordKey]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[recordKey]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) entry(key recordKey, create bool) *memoryEntry {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok || !create {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok = s.entries[key]; ok {
		return e
	}

	e = &memoryEntry{record: UsageRecord{UserID: key.userID, Day: key.day}}
	s.entries[key] = e

	return e
}

func (s *MemoryStore) Find(ctx context.Context, userID string, day Day) (*UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := s.entry(recordKey{userID, day}, false)
	if e == nil {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.exists {
		return nil, nil
	}

	record := e.record
	return &record, nil
}

func (s *MemoryStore) ConsumeIfBelow(ctx context.Context, userID string, day Day, capability quota.Capability, limit int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	if _, err := counterField(capability); err != nil {
		return 0, false, err
	}

	e := s.entry(recordKey{userID, day}, true)

	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.record.Count(capability)
	if limit >= 0 && current >= limit {
		return current, false, nil
	}

	switch capability {
	case quota.CapabilityFlashcards:
		e.record.FlashcardCount++
	case quota.CapabilityQuizzes:
		e.record.QuizCount++
	case quota.CapabilityTutorQnA:
		e.record.QnACount++
	}

	e.record.UpdatedAt = s.now().UTC()
	e.exists = true

	return current + 1, true, nil
}

func (s *MemoryStore) ListSince(ctx context.Context, userID string, since Day) ([]UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*memoryEntry, 0)
	for key, e := range s.entries {
		if key.userID == userID && key.day >= since {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	records := make([]UsageRecord, 0, len(matched))
	for _, e := range matched {
		e.mu.Lock()
		if e.exists {
			records = append(records, e.record)
		}
		e.mu.Unlock()
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Day < records[j].Day
	})

	return records, nil
}

func (s *MemoryStore) DeleteBefore(ctx context.Context, day Day) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, e := range s.entries {
		if key.day < day {
			delete(s.entries, key)
			if e.exists {
				deleted++
			}
		}
	}

	return deleted, nil
}
