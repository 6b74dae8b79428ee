// Package socketio_client follows a remote supertrace server: it connects
// as a socket.io client, decodes every snapshot the server broadcasts and
// hands it to local renderers. Optional commands are sent once connected.
package socketio_client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/render"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Wire names shared with modules/socketio.
const (
	eventSnapshot     = "snapshot"
	eventControlError = "control_error"
	defaultPath       = "/socket.io/"
)

// ConnectTimeout bounds the wait for the initial connection.
const ConnectTimeout = 15 * time.Second

// Input configures a follower.
type Input struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Commands are emitted in order after the connection is established,
	// e.g. "restart".
	Commands []string
}

// Follow connects to the server at input.URL and forwards snapshots to r
// until ctx is cancelled. It returns an error if the connection cannot be
// established.
func Follow(ctx context.Context, input Input, r render.Renderer) error {
	logger := ctxlog.FromContext(ctx).With("follow", input.URL)

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("failed to parse URL %q: scheme and host are required", input.URL)
	}
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = defaultPath
	}
	ns := input.Namespace
	if ns == "" {
		ns = "/"
	}

	opts := socket.DefaultOptions()
	opts.SetPath(path)
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(ns, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	connectChan := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Following remote session.", "sid", io.Id())
		for _, cmd := range input.Commands {
			logger.Debug("Sending command.", "op", cmd)
			io.Emit(cmd)
		}
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.On(types.EventName(eventSnapshot), func(data ...any) {
		if len(data) == 0 {
			return
		}
		snap, err := DecodeSnapshot(data[0])
		if err != nil {
			logger.Warn("Dropping undecodable snapshot.", "error", err)
			return
		}
		r.OnSnapshot(ctx, snap)
	})
	io.On(types.EventName(eventControlError), func(data ...any) {
		logger.Warn("Remote command failed.", "detail", fmt.Sprint(data...))
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		return nil
	case <-time.After(ConnectTimeout):
		return fmt.Errorf("timed out after %s waiting for socket.io connection", ConnectTimeout)
	}

	<-ctx.Done()
	return nil
}

// DecodeSnapshot converts a decoded socket.io payload back into a
// render.Snapshot.
func DecodeSnapshot(payload any) (render.Snapshot, error) {
	var snap render.Snapshot
	raw, err := json.Marshal(payload)
	if err != nil {
		return snap, fmt.Errorf("re-encoding snapshot payload: %w", err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}
