package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bracket-guide/internal/detect"
	"bracket-guide/internal/pipeline"
	"bracket-guide/pkg/geometry"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	pipe := pipeline.New(detect.NewSimulatedDetector(640, 1), pipeline.DefaultOptions(), zap.NewNop())
	t.Cleanup(func() { pipe.Close() })
	return New(pipe, pipeline.NewSession(zap.NewNop()), zap.NewNop())
}

func TestDispatchPlacementFlow(t *testing.T) {
	s := testServer(t)
	target := geometry.NewVector3(0, 0, 0.08)

	placed := s.Dispatch(Command{Type: "place", Position: target})
	require.Equal(t, "placed", placed.Type)
	require.NotEmpty(t, placed.ID)
	require.NotNil(t, placed.Transform)

	rotated := s.Dispatch(Command{Type: "rotate", ID: placed.ID, Delta: geometry.NewVector3(370, 0, 0)})
	require.Equal(t, "transform", rotated.Type)
	assert.InDelta(t, 10.0, rotated.Transform.Rotation.X, 1e-9)

	scaled := s.Dispatch(Command{Type: "scale", ID: placed.ID, Factor: 3.0})
	require.Equal(t, "transform", scaled.Type)
	assert.Equal(t, 8.0, scaled.Transform.Scale)

	fb := s.Dispatch(Command{Type: "feedback", ID: placed.ID, Target: target})
	require.Equal(t, "feedback", fb.Type)
	require.NotNil(t, fb.Feedback)
	assert.Equal(t, "perfect", fb.Feedback.Quality.String())

	removed := s.Dispatch(Command{Type: "remove", ID: placed.ID})
	assert.Equal(t, "ok", removed.Type)

	missing := s.Dispatch(Command{Type: "feedback", ID: placed.ID, Target: target})
	assert.Equal(t, "not_found", missing.Type)
}

func TestDispatchProcess(t *testing.T) {
	s := testServer(t)

	s.Dispatch(Command{Type: "intrinsics", Fx: 500, Fy: 500, Cx: 320, Cy: 320})

	// One confident slot in tensor format.
	reply := s.Dispatch(Command{
		Type:    "process",
		Buffer:  []float32{320, 100, 50, 60, 0.9},
		Slots:   1,
		Classes: 1,
		Width:   640,
		Height:  640,
	})
	require.Equal(t, "teeth", reply.Type)
	require.Len(t, reply.Teeth, 1)
	assert.InDelta(t, 0.9, reply.Teeth[0].Confidence, 1e-6)
}

func TestDispatchProcessShortBuffer(t *testing.T) {
	s := testServer(t)
	reply := s.Dispatch(Command{Type: "process", Buffer: []float32{1, 2}, Slots: 1, Classes: 1, Width: 640, Height: 640})
	assert.Equal(t, "error", reply.Type)
	assert.NotEmpty(t, reply.Error)
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := testServer(t)
	reply := s.Dispatch(Command{Type: "teleport"})
	assert.Equal(t, "error", reply.Type)
}

func TestWebsocketRoundTrip(t *testing.T) {
	s := testServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.NoError(t, conn.WriteJSON(Command{Type: "place", ID: "f1"}))
	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "placed", reply.Type)
	assert.Equal(t, "f1", reply.ID)

	require.NoError(t, conn.WriteJSON(Command{Type: "fixtures"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "fixtures", reply.Type)
	assert.Equal(t, []string{"f1"}, reply.Fixtures)
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
