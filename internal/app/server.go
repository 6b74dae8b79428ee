package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vk/supertrace/internal/metrics"
	"github.com/vk/supertrace/internal/session"
)

// newMux builds the HTTP mux shared by the health, metrics and status
// endpoints and by network renderers.
func (a *App) newMux(sess session.Session) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", metrics.Handler(a.promReg))
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		a.statusHandler(w, r, sess)
	})
	return mux
}

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type statusBody struct {
	TraceID      string `json:"trace_id"`
	State        string `json:"state"`
	NextStep     int    `json:"next_step"`
	LastApplied  int    `json:"last_applied"`
	MaxSuperstep int    `json:"max_superstep"`
}

// statusHandler reports the scheduler status of the loaded trace.
func (a *App) statusHandler(w http.ResponseWriter, _ *http.Request, sess session.Session) {
	st, err := sess.Status()
	if errors.Is(err, session.ErrNoTrace) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statusBody{
		TraceID:      st.TraceID,
		State:        st.State.String(),
		NextStep:     st.NextStep,
		LastApplied:  st.LastApplied,
		MaxSuperstep: st.MaxSuperstep,
	})
}
