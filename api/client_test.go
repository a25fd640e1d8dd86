package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

type fakeBackend struct {
	refreshCalls  atomic.Int32
	profileCalls  atomic.Int32
	refreshStatus int
	// replayStatus, when set, is returned for requests carrying a refreshed cookie.
	replayStatus int
}

func (b *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeEnvelope(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "v1", Path: "/"})
		writeEnvelope(w, http.StatusOK, "ok", nil)
	})
	r.Post("/auth/refreshtoken", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		if b.refreshStatus != 0 {
			writeEnvelope(w, b.refreshStatus, "Refresh token expired", nil)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "v2", Path: "/"})
		writeEnvelope(w, http.StatusOK, "ok", nil)
	})
	r.Get("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		b.profileCalls.Add(1)
		cookie, err := r.Cookie("accessToken")
		if err != nil || cookie.Value != "v2" {
			writeEnvelope(w, http.StatusUnauthorized, "Token expired", nil)
			return
		}
		if b.replayStatus != 0 {
			writeEnvelope(w, b.replayStatus, "Still unauthorized", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "ok", UserProfile{ID: 1, FullName: "Admin", Email: "admin@example.com", Role: RoleAdmin})
	})
	return r
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, nil)
}

func TestRefreshesOnceAndReplays(t *testing.T) {
	backend := &fakeBackend{}
	client := newTestClient(t, backend.router())

	profile, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, profile.Role)
	assert.Equal(t, int32(1), backend.refreshCalls.Load())
	assert.Equal(t, int32(2), backend.profileCalls.Load())
}

func TestSecondUnauthorizedIsPropagated(t *testing.T) {
	backend := &fakeBackend{replayStatus: http.StatusUnauthorized}
	client := newTestClient(t, backend.router())
	expired := false
	client.OnSessionExpired = func() { expired = true }

	_, err := client.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Still unauthorized", Message(err, "fallback"))
	assert.Equal(t, int32(1), backend.refreshCalls.Load())
	assert.Equal(t, int32(2), backend.profileCalls.Load())
	assert.False(t, expired)
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	backend := &fakeBackend{refreshStatus: http.StatusUnauthorized}
	client := newTestClient(t, backend.router())
	expired := 0
	client.OnSessionExpired = func() { expired++ }

	_, err := client.Profile(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Refresh token expired", Message(err, ""))
	assert.Equal(t, 1, expired)
	assert.Equal(t, int32(1), backend.refreshCalls.Load())
	assert.Equal(t, int32(1), backend.profileCalls.Load())
}

func TestLoginFailureDoesNotRefresh(t *testing.T) {
	backend := &fakeBackend{}
	client := newTestClient(t, backend.router())

	err := client.Login(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", Message(err, ""))
	assert.Equal(t, int32(0), backend.refreshCalls.Load())
}

func TestLoginStoresSessionCookie(t *testing.T) {
	backend := &fakeBackend{}
	client := newTestClient(t, backend.router())

	require.NoError(t, client.Login(context.Background(), "admin@example.com", "secret"))
	// v1 is stale for the profile endpoint, so a refresh still follows.
	_, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), backend.refreshCalls.Load())
}

func TestOtherErrorsPassThrough(t *testing.T) {
	r := chi.NewRouter()
	var refreshCalls atomic.Int32
	r.Post("/auth/refreshtoken", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	r.Delete("/buildings/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusConflict, "Building still has rooms", nil)
	})
	client := newTestClient(t, r)

	err := client.DeleteBuilding(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, "Building still has rooms", Message(err, "failed to delete building"))
	assert.Equal(t, int32(0), refreshCalls.Load())
}

func TestListPassesFiltersThrough(t *testing.T) {
	r := chi.NewRouter()
	var got map[string]string
	r.Get("/rooms", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"page":       q.Get("page"),
			"size":       q.Get("size"),
			"buildingId": q.Get("buildingId"),
			"status":     q.Get("status"),
			"keyword":    q.Get("keyword"),
		}
		writeEnvelope(w, http.StatusOK, "ok", Page[Room]{
			Content:       []Room{{ID: 3, RoomNumber: "101"}, {ID: 1, RoomNumber: "102"}},
			Number:        1,
			TotalPages:    4,
			TotalElements: 35,
		})
	})
	client := newTestClient(t, r)

	page, err := client.ListRooms(context.Background(), ListQuery{Page: 1, Size: 10, BuildingID: 2, Status: string(RoomAvailable), Keyword: "10"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"page": "1", "size": "10", "buildingId": "2", "status": "AVAILABLE", "keyword": "10"}, got)
	assert.Equal(t, []int64{3, 1}, []int64{page.Content[0].ID, page.Content[1].ID})
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, int64(35), page.TotalElements)
}

func TestMultipartReplaySendsSameBody(t *testing.T) {
	r := chi.NewRouter()
	var attempts atomic.Int32
	var refreshCalls atomic.Int32
	var names []string
	r.Post("/auth/refreshtoken", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusOK, "ok", nil)
	})
	r.Post("/buildings", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		var input BuildingInput
		assert.NoError(t, json.Unmarshal([]byte(r.FormValue("data")), &input))
		names = append(names, input.Name)
		image, _, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		content, _ := io.ReadAll(image)
		assert.Equal(t, "png-bytes", string(content))

		if attempts.Add(1) == 1 {
			writeEnvelope(w, http.StatusUnauthorized, "expired", nil)
			return
		}
		writeEnvelope(w, http.StatusCreated, "created", Building{ID: 9, Name: input.Name, Address: input.Address})
	})
	client := newTestClient(t, r)

	building, err := client.CreateBuilding(context.Background(), BuildingInput{Name: "Sunrise", Address: "1 Main St"}, &File{Name: "front.png", Content: []byte("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, int64(9), building.ID)
	assert.Equal(t, []string{"Sunrise", "Sunrise"}, names)
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestDecodeEnvelopeWithoutData(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", 4)
	})
	r.Put("/settings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, r)

	count, err := client.UnreadNotificationCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.NoError(t, client.UpdateSettings(context.Background(), map[string]string{"PRICE_WATER": "15000"}))
}

func TestBaseURLPathIsJoined(t *testing.T) {
	r := chi.NewRouter()
	var gotPath, gotRequestID string
	r.Get("/api/v1/buildings/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		writeEnvelope(w, http.StatusOK, "ok", Building{ID: 5, Name: "Lotus"})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL+"/api/v1/", nil)

	building, err := client.GetBuilding(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Lotus", building.Name)
	assert.Equal(t, "/api/v1/buildings/5", gotPath)
	assert.NotEmpty(t, gotRequestID)
}
