// Package guard decides whether the current session may open a console route.
// The profile is verified once; after that every check runs on cached flags.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rentadm/api"
)

type Capability string

const (
	Authenticated Capability = "authenticated"
	AdminArea     Capability = "admin-area"
)

const (
	LoginPath        = "/login"
	RegisterPath     = "/register"
	UnauthorizedPath = "/unauthorized"
)

var (
	ErrLoginRequired = errors.New("not logged in: run `rentadm auth login`")
	ErrUnauthorized  = errors.New("this action needs an ADMIN account")
)

// HasCapability is the only place roles are interpreted.
func HasCapability(user api.UserProfile, c Capability) bool {
	switch c {
	case Authenticated:
		return true
	case AdminArea:
		return user.Role == api.RoleAdmin
	}
	return false
}

// Rule binds a route pattern to the capabilities it needs. An empty Requires
// marks a public route. Segments starting with ':' match any value.
type Rule struct {
	Path     string
	Requires []Capability
}

func (r Rule) Public() bool {
	return len(r.Requires) == 0
}

func (r Rule) matches(path string) bool {
	want := splitPath(r.Path)
	got := splitPath(path)
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if strings.HasPrefix(want[i], ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}

var admin = []Capability{Authenticated, AdminArea}

// Routes is the console's route table.
var Routes = []Rule{
	{Path: LoginPath},
	{Path: RegisterPath},
	{Path: UnauthorizedPath},

	{Path: "/dashboard", Requires: admin},
	{Path: "/profile", Requires: admin},
	{Path: "/buildings", Requires: admin},
	{Path: "/buildings/add", Requires: admin},
	{Path: "/buildings/edit/:id", Requires: admin},
	{Path: "/rooms", Requires: admin},
	{Path: "/rooms/add", Requires: admin},
	{Path: "/rooms/edit/:id", Requires: admin},
	{Path: "/tenants", Requires: admin},
	{Path: "/tenants/add", Requires: admin},
	{Path: "/tenants/edit/:id", Requires: admin},
	{Path: "/contracts", Requires: admin},
	{Path: "/contracts/add", Requires: admin},
	{Path: "/contracts/requests", Requires: admin},
	{Path: "/contracts/:id", Requires: admin},
	{Path: "/meter-readings", Requires: admin},
	{Path: "/meter-readings/history/:roomId", Requires: admin},
	{Path: "/incidents", Requires: admin},
	{Path: "/invoices", Requires: admin},
	{Path: "/invoices/:id", Requires: admin},
	{Path: "/settings", Requires: admin},
	{Path: "/notifications", Requires: admin},
}

type Decision struct {
	Allowed  bool
	Redirect string
}

// Redirect is a refused route turned into an error.
type Redirect struct {
	Path   string
	Target string
}

func (r *Redirect) Error() string {
	switch r.Target {
	case LoginPath:
		return ErrLoginRequired.Error()
	case UnauthorizedPath:
		return ErrUnauthorized.Error()
	}
	return fmt.Sprintf("%s redirects to %s", r.Path, r.Target)
}

func (r *Redirect) Unwrap() error {
	switch r.Target {
	case LoginPath:
		return ErrLoginRequired
	case UnauthorizedPath:
		return ErrUnauthorized
	}
	return nil
}

type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (api.UserProfile, error)
	IsAuthenticated() bool
	User() (api.UserProfile, bool)
}

type Guard struct {
	Rules   []Rule
	session ProfileFetcher

	once sync.Once
}

func New(session ProfileFetcher) *Guard {
	return &Guard{Rules: Routes, session: session}
}

// Verify fetches the profile when no session is known yet. It runs at most
// once; a failure leaves the session unauthenticated and is not an error.
func (g *Guard) Verify(ctx context.Context) {
	g.once.Do(func() {
		if g.session.IsAuthenticated() {
			return
		}
		_, _ = g.session.FetchProfile(ctx)
	})
}

func (g *Guard) Check(path string) Decision {
	rule, ok := g.match(path)
	if !ok {
		return Decision{Redirect: LoginPath}
	}
	if rule.Public() {
		return Decision{Allowed: true}
	}
	user, known := g.session.User()
	if !g.session.IsAuthenticated() || !known {
		return Decision{Redirect: LoginPath}
	}
	for _, c := range rule.Requires {
		if !HasCapability(user, c) {
			return Decision{Redirect: UnauthorizedPath}
		}
	}
	return Decision{Allowed: true}
}

// Enter verifies the session and checks path, returning a *Redirect when the
// route is refused.
func (g *Guard) Enter(ctx context.Context, path string) error {
	g.Verify(ctx)
	d := g.Check(path)
	if d.Allowed {
		return nil
	}
	return &Redirect{Path: path, Target: d.Redirect}
}

func (g *Guard) match(path string) (Rule, bool) {
	for _, rule := range g.Rules {
		if rule.matches(path) {
			return rule, true
		}
	}
	return Rule{}, false
}
