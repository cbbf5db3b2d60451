// Package server exposes the detection pipeline and placement session to a
// rendering client over a websocket. Rendering itself stays on the client;
// this is only the transport contract.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bracket-guide/internal/detect"
	"bracket-guide/internal/fixture"
	"bracket-guide/internal/guidance"
	"bracket-guide/internal/pipeline"
	"bracket-guide/internal/pose"
	"bracket-guide/internal/tooth"
	"bracket-guide/internal/version"
	"bracket-guide/pkg/geometry"
)

// Command is one client request on the websocket.
type Command struct {
	Type string `json:"type"`

	// Intrinsics update.
	Fx float64 `json:"fx,omitempty"`
	Fy float64 `json:"fy,omitempty"`
	Cx float64 `json:"cx,omitempty"`
	Cy float64 `json:"cy,omitempty"`

	// Tensor processing (external inference runtime output).
	Buffer  []float32 `json:"buffer,omitempty"`
	Slots   int       `json:"slots,omitempty"`
	Classes int       `json:"classes,omitempty"`
	Width   int       `json:"width,omitempty"`
	Height  int       `json:"height,omitempty"`

	// Fixture operations.
	ID       string           `json:"id,omitempty"`
	Position geometry.Vector3 `json:"position,omitempty"`
	Delta    geometry.Vector3 `json:"delta,omitempty"`
	Factor   float64          `json:"factor,omitempty"`
	Target   geometry.Vector3 `json:"target,omitempty"`
}

// Reply is one server response.
type Reply struct {
	Type      string                `json:"type"`
	Error     string                `json:"error,omitempty"`
	ID        string                `json:"id,omitempty"`
	Teeth     []tooth.DetectedTooth `json:"teeth,omitempty"`
	Transform *fixture.Transform    `json:"transform,omitempty"`
	Feedback  *guidance.Feedback    `json:"feedback,omitempty"`
	Fixtures  []string              `json:"fixtures,omitempty"`
}

// Server handles websocket clients driving the pipeline and session.
type Server struct {
	pipe     *pipeline.Pipeline
	session  *pipeline.Session
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// New creates a Server around an existing pipeline and session.
func New(pipe *pipeline.Pipeline, session *pipeline.Session, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pipe:    pipe,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 16,
			WriteBufferSize: 1 << 16,
		},
		log: logger.Named("server"),
	}
}

// Handler returns the HTTP handler: /ws for the websocket, /healthz for
// liveness.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	s.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("client read failed", zap.Error(err))
			}
			return
		}
		if err := conn.WriteJSON(s.Dispatch(cmd)); err != nil {
			s.log.Warn("client write failed", zap.Error(err))
			return
		}
	}
}

// Dispatch executes one command and builds its reply.
func (s *Server) Dispatch(cmd Command) Reply {
	switch cmd.Type {
	case "intrinsics":
		s.pipe.SetIntrinsics(pose.Intrinsics{Fx: cmd.Fx, Fy: cmd.Fy, Cx: cmd.Cx, Cy: cmd.Cy})
		return Reply{Type: "ok"}

	case "process":
		out := detect.Output{Buffer: cmd.Buffer, Slots: cmd.Slots, Classes: cmd.Classes}
		teeth, err := s.pipe.Process(out, cmd.Width, cmd.Height)
		if err != nil {
			return errReply(err)
		}
		return Reply{Type: "teeth", Teeth: teeth}

	case "place":
		id, tr, err := s.session.Place(cmd.ID, cmd.Position)
		if err != nil {
			return errReply(err)
		}
		return Reply{Type: "placed", ID: id, Transform: &tr}

	case "rotate":
		return transformReply(s.session.Rotate(cmd.ID, cmd.Delta.X, cmd.Delta.Y, cmd.Delta.Z))

	case "scale":
		return transformReply(s.session.ScaleBy(cmd.ID, cmd.Factor))

	case "move":
		return transformReply(s.session.Move(cmd.ID, cmd.Delta.X, cmd.Delta.Y, cmd.Delta.Z))

	case "reset":
		return transformReply(s.session.Reset(cmd.ID))

	case "remove":
		if err := s.session.Remove(cmd.ID); err != nil {
			return errReply(err)
		}
		return Reply{Type: "ok", ID: cmd.ID}

	case "feedback":
		fb, err := s.session.Feedback(cmd.ID, cmd.Target)
		if err != nil {
			return errReply(err)
		}
		return Reply{Type: "feedback", ID: cmd.ID, Feedback: &fb}

	case "fixtures":
		return Reply{Type: "fixtures", Fixtures: s.session.Fixtures()}

	default:
		return Reply{Type: "error", Error: "unknown command type " + cmd.Type}
	}
}

func transformReply(t fixture.Transform, err error) Reply {
	if err != nil {
		return errReply(err)
	}
	return Reply{Type: "transform", Transform: &t}
}

func errReply(err error) Reply {
	reply := Reply{Type: "error", Error: err.Error()}
	switch {
	case errors.Is(err, fixture.ErrNotFound):
		reply.Type = "not_found"
	case errors.Is(err, pipeline.ErrPassInFlight):
		reply.Type = "busy"
	}
	return reply
}
