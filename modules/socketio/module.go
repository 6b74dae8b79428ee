// Package socketio broadcasts snapshots to browser renderers over
// socket.io and accepts playback commands from them.
//
// Server events:
//
//	snapshot       render.Snapshot, after every publish and on connect
//	status         reply to a status request
//	control_error  {op, error} when a command fails
//
// Client events: start, stop, restart, step, status and load (with the
// trace text as the only argument).
package socketio

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/registry"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/session"
	"github.com/zishang520/socket.io/v2/socket"
)

// Name is the registry name of this renderer.
const Name = "socketio"

// Path is where the socket.io handler is mounted.
const Path = "/socket.io/"

// Event names.
const (
	EventSnapshot     = "snapshot"
	EventStatus       = "status"
	EventControlError = "control_error"

	CommandStart   = "start"
	CommandStop    = "stop"
	CommandRestart = "restart"
	CommandStep    = "step"
	CommandLoad    = "load"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the socket.io renderer.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRenderer(Name, &registry.RegisteredRenderer{
		Description: "broadcasts snapshots over socket.io and accepts playback commands",
		NeedsServer: true,
		New: func(ctx context.Context, deps registry.Deps) (render.Renderer, error) {
			srv := NewServer(ctx, deps.Session)
			deps.Mux.Handle(Path, srv.Handler())
			return srv, nil
		},
	})
}

// ControlError is the payload of a control_error event.
type ControlError struct {
	Op    string `json:"op"`
	Error string `json:"error"`
}

// StatusReply is the payload of a status event.
type StatusReply struct {
	TraceID      string `json:"trace_id"`
	State        string `json:"state"`
	NextStep     int    `json:"next_step"`
	LastApplied  int    `json:"last_applied"`
	MaxSuperstep int    `json:"max_superstep"`
}

// Server is a render.Renderer that fans snapshots out to every connected
// socket.io client.
type Server struct {
	io   *socket.Server
	sess session.Session
	// ctx carries the logger for event handlers.
	ctx context.Context
}

// NewServer creates the socket.io server. sess may be nil, in which case
// commands are rejected.
func NewServer(ctx context.Context, sess session.Session) *Server {
	s := &Server{
		io:   socket.NewServer(nil, nil),
		sess: sess,
		ctx:  ctxlog.With(context.WithoutCancel(ctx), "renderer", Name),
	}
	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		s.onConnection(client)
	})
	return s
}

// Handler returns the HTTP handler to mount at Path.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// OnSnapshot implements render.Renderer.
func (s *Server) OnSnapshot(_ context.Context, snap render.Snapshot) {
	s.io.Emit(EventSnapshot, snap)
}

// Close disconnects all clients.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}

func (s *Server) onConnection(client *socket.Socket) {
	logger := ctxlog.FromContext(s.ctx).With("sid", string(client.Id()))
	logger.Info("Renderer client connected.")

	if s.sess != nil {
		if snap, err := s.sess.Current(s.ctx); err == nil {
			client.Emit(EventSnapshot, snap)
		}
	}

	for _, op := range []string{CommandStart, CommandStop, CommandRestart, CommandStep, CommandLoad} {
		client.On(op, func(args ...any) {
			logger.Debug("Control command received.", "op", op)
			if err := Dispatch(s.ctx, s.sess, op, args); err != nil {
				logger.Warn("Control command failed.", "op", op, "error", err)
				client.Emit(EventControlError, ControlError{Op: op, Error: err.Error()})
			}
		})
	}
	client.On(EventStatus, func(...any) {
		reply, err := Status(s.sess)
		if err != nil {
			client.Emit(EventControlError, ControlError{Op: EventStatus, Error: err.Error()})
			return
		}
		client.Emit(EventStatus, reply)
	})
	client.On("disconnect", func(reason ...any) {
		logger.Info("Renderer client disconnected.", "reason", fmt.Sprint(reason...))
	})
}

var errNoSession = errors.New("no session attached")

// Dispatch runs one playback command against sess.
func Dispatch(ctx context.Context, sess session.Session, op string, args []any) error {
	if sess == nil {
		return errNoSession
	}
	switch op {
	case CommandStart:
		return sess.Start(ctx)
	case CommandStop:
		return sess.Stop(ctx)
	case CommandRestart:
		return sess.Restart(ctx)
	case CommandStep:
		return sess.Step(ctx)
	case CommandLoad:
		if len(args) == 0 {
			return errors.New("load: missing trace text")
		}
		text, ok := args[0].(string)
		if !ok {
			return fmt.Errorf("load: trace text must be a string, got %T", args[0])
		}
		_, err := sess.LoadTrace(ctx, text)
		return err
	default:
		return fmt.Errorf("unknown command %q", op)
	}
}

// Status builds the status reply for sess.
func Status(sess session.Session) (StatusReply, error) {
	if sess == nil {
		return StatusReply{}, errNoSession
	}
	st, err := sess.Status()
	if err != nil {
		return StatusReply{}, err
	}
	return StatusReply{
		TraceID:      st.TraceID,
		State:        st.State.String(),
		NextStep:     st.NextStep,
		LastApplied:  st.LastApplied,
		MaxSuperstep: st.MaxSuperstep,
	}, nil
}
