// Package fixture tracks user-manipulable bracket transforms keyed by
// fixture ID.
package fixture

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"bracket-guide/pkg/geometry"
)

// Physical bounds for bracket size in millimeters.
const (
	MinSizeMm     = 2.0
	MaxSizeMm     = 8.0
	DefaultSizeMm = 4.0
)

// ErrNotFound reports an operation on a fixture ID the store does not hold.
// Operations never create a fixture as a side effect.
var ErrNotFound = errors.New("fixture not found")

// ErrExists reports a create for an ID already placed.
var ErrExists = errors.New("fixture already exists")

// Transform is the mutable placement state of one fixture. Position is in
// meters, Rotation is Euler degrees with each axis in [0, 360), Scale is the
// bracket size in millimeters clamped to [MinSizeMm, MaxSizeMm].
type Transform struct {
	Position geometry.Vector3 `json:"position"`
	Rotation geometry.Vector3 `json:"rotation"`
	Scale    float64          `json:"scale"`
	Visible  bool             `json:"visible"`
}

// Store owns one Transform per placed fixture. All methods are safe for
// concurrent use; reads return value snapshots, so a render pass can never
// observe a half-applied edit.
type Store struct {
	mu       sync.RWMutex
	fixtures map[string]Transform
}

// NewStore creates an empty fixture store.
func NewStore() *Store {
	return &Store{fixtures: make(map[string]Transform)}
}

// Create places a new fixture at the given position with zero rotation and
// the default size. Creating an ID that already exists is an error; edits
// must go through the edit operations.
func (s *Store) Create(id string, position geometry.Vector3) (Transform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fixtures[id]; ok {
		return Transform{}, fmt.Errorf("create %q: %w", id, ErrExists)
	}
	t := Transform{
		Position: position,
		Scale:    DefaultSizeMm,
		Visible:  true,
	}
	s.fixtures[id] = t
	return t, nil
}

// Get returns a snapshot of a fixture's Transform.
func (s *Store) Get(id string) (Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.fixtures[id]
	if !ok {
		return Transform{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return t, nil
}

// Rotate adds the given deltas (degrees) to the fixture's rotation, wrapping
// each axis into [0, 360).
func (s *Store) Rotate(id string, dx, dy, dz float64) (Transform, error) {
	return s.update(id, "rotate", func(t *Transform) {
		t.Rotation = geometry.WrapEuler(t.Rotation.Add(geometry.Vector3{X: dx, Y: dy, Z: dz}))
	})
}

// ScaleBy multiplies the fixture's size by factor, clamping the result into
// [MinSizeMm, MaxSizeMm].
func (s *Store) ScaleBy(id string, factor float64) (Transform, error) {
	return s.update(id, "scale", func(t *Transform) {
		t.Scale = geometry.Clamp(t.Scale*factor, MinSizeMm, MaxSizeMm)
	})
}

// Move adds the given deltas (meters) to the fixture's position. Position is
// free in 3D space and never clamped.
func (s *Store) Move(id string, dx, dy, dz float64) (Transform, error) {
	return s.update(id, "move", func(t *Transform) {
		t.Position = t.Position.Add(geometry.Vector3{X: dx, Y: dy, Z: dz})
	})
}

// Reset restores rotation to zero and size to the default, leaving position
// untouched.
func (s *Store) Reset(id string) (Transform, error) {
	return s.update(id, "reset", func(t *Transform) {
		t.Rotation = geometry.Vector3{}
		t.Scale = DefaultSizeMm
	})
}

// SetVisible toggles the fixture's visibility flag.
func (s *Store) SetVisible(id string, visible bool) (Transform, error) {
	return s.update(id, "set visible", func(t *Transform) {
		t.Visible = visible
	})
}

// Remove destroys a fixture's Transform. Later operations on the ID report
// ErrNotFound.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fixtures[id]; !ok {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	delete(s.fixtures, id)
	return nil
}

// IDs returns the placed fixture IDs in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.fixtures))
	for id := range s.fixtures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of placed fixtures.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fixtures)
}

func (s *Store) update(id, op string, apply func(*Transform)) (Transform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.fixtures[id]
	if !ok {
		return Transform{}, fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	apply(&t)
	s.fixtures[id] = t
	return t, nil
}
