package pipeline

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bracket-guide/internal/fixture"
	"bracket-guide/internal/guidance"
	"bracket-guide/pkg/geometry"
)

// Session glues fixture placement to guidance for one user session. Fixture
// edits may race with feedback reads from a render pass; the underlying
// store hands out stable snapshots, so both sides always see a consistent
// Transform.
type Session struct {
	store *fixture.Store
	log   *zap.Logger
}

// NewSession creates an empty placement session.
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store: fixture.NewStore(),
		log:   logger.Named("session"),
	}
}

// Place creates a fixture at the given position and returns its ID. When id
// is empty a fresh one is minted. The anchor subsystem, not the session,
// owns any AR anchor backing the fixture.
func (s *Session) Place(id string, position geometry.Vector3) (string, fixture.Transform, error) {
	if id == "" {
		id = uuid.NewString()
	}
	t, err := s.store.Create(id, position)
	if err != nil {
		return "", fixture.Transform{}, err
	}
	s.log.Info("fixture placed", zap.String("id", id))
	return id, t, nil
}

// Rotate applies an incremental rotation in degrees.
func (s *Session) Rotate(id string, dx, dy, dz float64) (fixture.Transform, error) {
	return s.store.Rotate(id, dx, dy, dz)
}

// ScaleBy applies a multiplicative size change.
func (s *Session) ScaleBy(id string, factor float64) (fixture.Transform, error) {
	return s.store.ScaleBy(id, factor)
}

// Move applies an incremental translation in meters.
func (s *Session) Move(id string, dx, dy, dz float64) (fixture.Transform, error) {
	return s.store.Move(id, dx, dy, dz)
}

// Reset restores a fixture's rotation and size, keeping its position.
func (s *Session) Reset(id string) (fixture.Transform, error) {
	return s.store.Reset(id)
}

// Remove destroys a fixture.
func (s *Session) Remove(id string) error {
	if err := s.store.Remove(id); err != nil {
		return err
	}
	s.log.Info("fixture removed", zap.String("id", id))
	return nil
}

// Transform returns a snapshot of a fixture's current state.
func (s *Session) Transform(id string) (fixture.Transform, error) {
	return s.store.Get(id)
}

// Fixtures returns the IDs of all placed fixtures.
func (s *Session) Fixtures() []string {
	return s.store.IDs()
}

// Feedback scores a fixture's live position against a target attachment
// position and explains the offset.
func (s *Session) Feedback(id string, target geometry.Vector3) (guidance.Feedback, error) {
	t, err := s.store.Get(id)
	if err != nil {
		return guidance.Feedback{}, err
	}
	return guidance.Evaluate(t.Position, target), nil
}
