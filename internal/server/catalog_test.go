package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lamarqs/aria/internal/models"
	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
	"golang.org/x/time/rate"
)

type staticAppTokens struct{}

func (staticAppTokens) Token(ctx context.Context) (string, error) { return "app-token", nil }
func (staticAppTokens) Invalidate() error                         { return nil }

func newTestCatalog(t *testing.T, upstream http.Handler) *CatalogHandler {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	spotify := services.NewSpotify(staticAppTokens{}, services.SpotifyOpts{
		BaseURL: server.URL,
		Limiter: rate.NewLimiter(rate.Inf, 1),
	})
	return NewCatalogHandler(spotify, shared.NewLogger(nil))
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("new releases become album cards", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/browse/new-releases" {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(`{"albums":{"items":[
				{"id":"al1","name":"Record","artists":[{"id":"a1","name":"Artist"}],
				 "images":[{"url":"https://img/al1"}]}
			]}}`))
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/new-releases", nil)
		rec := httptest.NewRecorder()
		catalog.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var list models.CardList
		if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if len(list.Items) != 1 {
			t.Fatalf("got %d cards, want 1", len(list.Items))
		}
		card := list.Items[0]
		if card.ID != "al1" || card.Type != models.CardAlbum || card.Subtitle != "Artist" {
			t.Errorf("unexpected card: %+v", card)
		}
	})

	t.Run("top tracks resolve through a chart playlist", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search":
				w.Write([]byte(`{"playlists":{"items":[{"id":"p1","name":"Top 50 - Global"}]}}`))
			case "/playlists/p1/tracks":
				w.Write([]byte(`{"items":[
					{"track":{"id":"t1","name":"Hit","artists":[{"id":"a1","name":"Artist"}]}},
					{"track":null}
				]}`))
			default:
				http.NotFound(w, r)
			}
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/top-tracks", nil)
		rec := httptest.NewRecorder()
		catalog.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var list models.CardList
		if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if len(list.Items) != 1 {
			t.Fatalf("got %d cards, want 1", len(list.Items))
		}
		if list.Items[0].ID != "t1" || list.Items[0].Type != models.CardTrack {
			t.Errorf("unexpected card: %+v", list.Items[0])
		}
	})

	t.Run("upstream failure maps to 502", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/featured-charts", nil)
		rec := httptest.NewRecorder()
		catalog.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})

	t.Run("upstream rate limit maps to 429", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/trending-songs", nil)
		rec := httptest.NewRecorder()
		catalog.ServeHTTP(rec, req)

		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429", rec.Code)
		}
		if got := rec.Header().Get("Retry-After"); got != "5" {
			t.Errorf("Retry-After = %q, want forwarded 5", got)
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		catalog := newTestCatalog(t, http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/unknown", nil)
		rec := httptest.NewRecorder()
		catalog.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestRouterIntegration(t *testing.T) {
	t.Run("middleware wraps handler routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(CORSMiddleware("http://localhost:3000"))
		router.Handler(newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"albums":{"items":[]}}`))
		})))

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/new-releases", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("CORS origin = %q", got)
		}
	})

	t.Run("preflight is answered by middleware", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(CORSMiddleware("http://localhost:3000"))
		router.Handler(newTestCatalog(t, http.NotFoundHandler()))

		req := httptest.NewRequest(http.MethodOptions, "/api/spotify/new-releases", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})
}
