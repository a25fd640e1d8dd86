package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentadm/api"
	"rentadm/state"
)

func profileBackend(t *testing.T, role api.Role, calls *int32) *api.Client {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "t", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"message":"ok"}`))
	})
	r.Get("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if _, err := r.Cookie("accessToken"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":401,"message":"Unauthorized"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 200,
			"data":   api.UserProfile{ID: 1, Email: "someone@example.com", Role: role},
		})
	})
	r.Post("/auth/refreshtoken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":401,"message":"Refresh token missing"}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, nil)
}

func TestRuleMatching(t *testing.T) {
	rule := Rule{Path: "/contracts/:id"}
	assert.True(t, rule.matches("/contracts/12"))
	assert.True(t, rule.matches("contracts/12/"))
	assert.False(t, rule.matches("/contracts"))
	assert.False(t, rule.matches("/contracts/12/edit"))
}

func TestHasCapability(t *testing.T) {
	adminUser := api.UserProfile{Role: api.RoleAdmin}
	tenant := api.UserProfile{Role: api.RoleUser}
	assert.True(t, HasCapability(adminUser, AdminArea))
	assert.False(t, HasCapability(tenant, AdminArea))
	assert.True(t, HasCapability(tenant, Authenticated))
}

func TestAdminIsAllowed(t *testing.T) {
	var calls int32
	client := profileBackend(t, api.RoleAdmin, &calls)
	session := state.NewSession(client)
	_, err := session.Login(context.Background(), "someone@example.com", "secret")
	require.NoError(t, err)

	g := New(session)
	require.NoError(t, g.Enter(context.Background(), "/contracts/42"))
	require.NoError(t, g.Enter(context.Background(), "/settings"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUserIsSentToUnauthorized(t *testing.T) {
	var calls int32
	client := profileBackend(t, api.RoleUser, &calls)
	session := state.NewSession(client)
	_, err := session.Login(context.Background(), "someone@example.com", "secret")
	require.NoError(t, err)

	g := New(session)
	assert.Equal(t, Decision{Redirect: UnauthorizedPath}, g.Check("/buildings"))
	err = g.Enter(context.Background(), "/buildings")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, Decision{Allowed: true}, g.Check("/unauthorized"))
}

func TestVerifyRunsOnceAndFailureMeansLogin(t *testing.T) {
	var calls int32
	client := profileBackend(t, api.RoleAdmin, &calls)
	session := state.NewSession(client)
	g := New(session)

	err := g.Enter(context.Background(), "/dashboard")
	assert.ErrorIs(t, err, ErrLoginRequired)
	err = g.Enter(context.Background(), "/invoices")
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	assert.NoError(t, g.Enter(context.Background(), "/login"))
}

func TestUnknownPathRedirectsToLogin(t *testing.T) {
	session := state.NewSession(nil)
	session.Restore(api.UserProfile{ID: 1, Role: api.RoleAdmin})
	g := New(session)
	assert.Equal(t, Decision{Redirect: LoginPath}, g.Check("/nowhere"))
	assert.Equal(t, Decision{Allowed: true}, g.Check("/dashboard"))
}
