package fixture

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bracket-guide/pkg/geometry"
)

func TestCreateDefaults(t *testing.T) {
	s := NewStore()
	pos := geometry.NewVector3(0.01, 0.02, 0.08)

	tr, err := s.Create("f1", pos)
	require.NoError(t, err)
	assert.Equal(t, pos, tr.Position)
	assert.Equal(t, geometry.Vector3{}, tr.Rotation)
	assert.Equal(t, DefaultSizeMm, tr.Scale)
	assert.True(t, tr.Visible)
}

func TestCreateDuplicate(t *testing.T) {
	s := NewStore()
	_, err := s.Create("f1", geometry.Vector3{})
	require.NoError(t, err)

	_, err = s.Create("f1", geometry.Vector3{})
	assert.ErrorIs(t, err, ErrExists)
}

func TestRotateWraps(t *testing.T) {
	s := NewStore()
	_, err := s.Create("f1", geometry.Vector3{})
	require.NoError(t, err)

	tr, err := s.Rotate("f1", 370, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, tr.Rotation.X, 1e-9)

	tr, err = s.Rotate("f1", -20, 725, 0)
	require.NoError(t, err)
	assert.InDelta(t, 350.0, tr.Rotation.X, 1e-9)
	assert.InDelta(t, 5.0, tr.Rotation.Y, 1e-9)
}

func TestScaleClamped(t *testing.T) {
	s := NewStore()
	_, err := s.Create("f1", geometry.Vector3{})
	require.NoError(t, err)

	// 4.0 * 3.0 would be 12.0; clamped to the maximum.
	tr, err := s.ScaleBy("f1", 3.0)
	require.NoError(t, err)
	assert.Equal(t, MaxSizeMm, tr.Scale)

	// Shrinking repeatedly bottoms out at the minimum.
	for i := 0; i < 10; i++ {
		tr, err = s.ScaleBy("f1", 0.5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, tr.Scale, MinSizeMm)
		assert.LessOrEqual(t, tr.Scale, MaxSizeMm)
	}
	assert.Equal(t, MinSizeMm, tr.Scale)
}

func TestMoveUnclamped(t *testing.T) {
	s := NewStore()
	_, err := s.Create("f1", geometry.NewVector3(0, 0, 0.1))
	require.NoError(t, err)

	tr, err := s.Move("f1", 5, -5, 100)
	require.NoError(t, err)
	assert.Equal(t, geometry.NewVector3(5, -5, 100.1), tr.Position)
}

func TestResetKeepsPosition(t *testing.T) {
	s := NewStore()
	pos := geometry.NewVector3(0.01, 0.02, 0.03)
	_, err := s.Create("f1", pos)
	require.NoError(t, err)

	_, err = s.Rotate("f1", 45, 90, 10)
	require.NoError(t, err)
	_, err = s.ScaleBy("f1", 1.5)
	require.NoError(t, err)

	tr, err := s.Reset("f1")
	require.NoError(t, err)
	assert.Equal(t, geometry.Vector3{}, tr.Rotation)
	assert.Equal(t, DefaultSizeMm, tr.Scale)
	assert.Equal(t, pos, tr.Position)
}

func TestRemove(t *testing.T) {
	s := NewStore()
	_, err := s.Create("f1", geometry.Vector3{})
	require.NoError(t, err)

	require.NoError(t, s.Remove("f1"))
	assert.ErrorIs(t, s.Remove("f1"), ErrNotFound)

	_, err = s.Get("f1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownIDNeverCreates(t *testing.T) {
	s := NewStore()

	_, err := s.Rotate("ghost", 10, 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ScaleBy("ghost", 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Move("ghost", 1, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Reset("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, s.Len())
}

func TestEditsIsolatedPerFixture(t *testing.T) {
	s := NewStore()
	_, err := s.Create("a", geometry.Vector3{})
	require.NoError(t, err)
	_, err = s.Create("b", geometry.Vector3{})
	require.NoError(t, err)

	_, err = s.Rotate("a", 90, 0, 0)
	require.NoError(t, err)

	b, err := s.Get("b")
	require.NoError(t, err)
	assert.Equal(t, geometry.Vector3{}, b.Rotation)

	assert.Equal(t, []string{"a", "b"}, s.IDs())
}

func TestConcurrentEditsAndReads(t *testing.T) {
	s := NewStore()
	_, err := s.Create("f1", geometry.Vector3{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Rotate("f1", 1, 1, 1)
				s.ScaleBy("f1", 1.01)
				s.Move("f1", 0.001, 0, 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				tr, err := s.Get("f1")
				if err != nil {
					t.Error(err)
					return
				}
				// Snapshots always honor the invariants.
				if tr.Scale < MinSizeMm || tr.Scale > MaxSizeMm {
					t.Errorf("scale out of bounds: %v", tr.Scale)
					return
				}
				if tr.Rotation.X < 0 || tr.Rotation.X >= 360 {
					t.Errorf("rotation out of range: %v", tr.Rotation.X)
					return
				}
			}
		}()
	}
	wg.Wait()
}
