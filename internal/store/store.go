// Package store keeps recently generated scenes in memory so clients can
// fetch them again by ID.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kyiku/hiddenword-back/internal/scene"
)

// Defaults for NewSceneStore.
const (
	DefaultCapacity = 100
	DefaultExpiry   = 30 * time.Minute
)

// sceneEntry holds a scene and its insertion time for expiry checking.
type sceneEntry struct {
	Scene     *scene.Scene
	CreatedAt time.Time
}

// SceneStore manages scenes in memory. When full, the oldest scene is
// evicted.
type SceneStore struct {
	scenes   map[uuid.UUID]*sceneEntry
	order    []uuid.UUID
	mu       sync.RWMutex
	capacity int
	expiry   time.Duration // 0 means no expiry
	now      func() time.Time
}

// NewSceneStore creates a SceneStore holding up to capacity scenes for
// expiry each. A capacity below 1 uses DefaultCapacity.
func NewSceneStore(capacity int, expiry time.Duration) *SceneStore {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &SceneStore{
		scenes:   make(map[uuid.UUID]*sceneEntry),
		capacity: capacity,
		expiry:   expiry,
		now:      time.Now,
	}
}

// Put stores sc under its ID, replacing any scene with the same ID.
func (s *SceneStore) Put(sc *scene.Scene) {
	if sc == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scenes[sc.ID]; !exists {
		s.order = append(s.order, sc.ID)
	}
	s.scenes[sc.ID] = &sceneEntry{Scene: sc, CreatedAt: s.now()}

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.scenes, oldest)
	}
}

// Get retrieves a scene by ID.
// Returns nil and false if the scene does not exist or has expired.
func (s *SceneStore) Get(id uuid.UUID) (*scene.Scene, bool) {
	s.mu.RLock()
	entry, exists := s.scenes[id]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	// Check expiry if set
	if s.expiry > 0 && s.now().Sub(entry.CreatedAt) > s.expiry {
		s.Delete(id)
		return nil, false
	}

	return entry.Scene, true
}

// Delete removes a scene by ID.
func (s *SceneStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scenes[id]; !exists {
		return
	}
	delete(s.scenes, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Count returns the number of stored scenes, expired ones included until
// they are next looked up.
func (s *SceneStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenes)
}
