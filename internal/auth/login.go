package auth

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lamarqs/aria/internal/shared"
)

// LoginResult contains the outcome of a CLI login flow.
type LoginResult struct {
	Record Record
	err    error
}

func (r LoginResult) Error() error { return r.err }

// LoginHandler adapts a [Callback] to a loopback HTTP listener for the CLI
// login flow. It validates the state parameter, drives the exchange, and
// delivers exactly one [LoginResult] through its channel.
type LoginHandler struct {
	callback   *Callback
	store      Store
	state      string
	route      string
	resultChan chan LoginResult
	once       sync.Once
	logger     *log.Logger
}

// NewLoginHandler creates a handler serving the given route (the path of the
// registered redirect URI). The state token should be cryptographically
// random for CSRF protection.
func NewLoginHandler(callback *Callback, store Store, state, route string, logger *log.Logger) *LoginHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LoginHandler{
		callback:   callback,
		store:      store,
		state:      state,
		route:      route,
		resultChan: make(chan LoginResult, 1),
		logger:     logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginHandler) Routes() []string {
	return []string{h.route}
}

// ServeHTTP handles the authorization redirect.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("state") != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.send(LoginResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if err := h.callback.Handle(r.Context(), query); err != nil {
		h.send(LoginResult{err: err})
		status := http.StatusBadRequest
		if !errors.Is(err, shared.ErrMissingVerifier) && h.callback.State() == CallbackError && query.Get("error") == "" {
			status = http.StatusInternalServerError
		}
		http.Error(w, "Authorization failed", status)
		return
	}

	record, ok, err := h.store.Load()
	if err != nil || !ok {
		h.send(LoginResult{err: fmt.Errorf("credentials not persisted after exchange: %v", err)})
		http.Error(w, "Authorization failed", http.StatusInternalServerError)
		return
	}

	h.send(LoginResult{Record: record})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// send delivers the login result through the channel (only once).
func (h *LoginHandler) send(result LoginResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// The channel receives exactly one result and is then closed.
func (h *LoginHandler) Result() <-chan LoginResult {
	return h.resultChan
}
