// Package guard decides whether a request may reach a route based on the
// presence of the session cookie. Cookie presence is a cheap heuristic for
// "likely authenticated"; the authoritative check is the session store's
// refresh, which runs before any protected content renders. A stale
// cookie fools the guard, never the layout gate behind it.
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/launchkit/saas-console/internal/config"
)

// Decision is the outcome for one request path. When Allow is false,
// Location carries the redirect target.
type Decision struct {
	Allow    bool
	Location string
}

// Guard holds the route surface. It is a pure decision function over
// (path, cookie present); it knows nothing about subscription or
// verification state.
type Guard struct {
	protectedPrefixes []string
	authPrefixes      []string
	loginPath         string
	dashboardPath     string
	sessionCookieName string
}

func New(routes config.RoutesConfig, sessionCookieName string) *Guard {
	return &Guard{
		protectedPrefixes: routes.ProtectedPrefixes,
		authPrefixes:      routes.AuthPrefixes,
		loginPath:         routes.LoginPath,
		dashboardPath:     routes.DashboardPath,
		sessionCookieName: sessionCookieName,
	}
}

// Decide maps (path, cookie present) to an allow or redirect outcome.
// Protected paths without a cookie go to login with the original path in
// the redirect parameter for post-login return navigation; auth paths
// with a cookie go back to the dashboard.
func (g *Guard) Decide(path string, hasSessionCookie bool) Decision {
	if g.isProtected(path) && !hasSessionCookie {
		q := url.Values{"redirect": {path}}
		return Decision{Location: g.loginPath + "?" + q.Encode()}
	}

	if g.isAuthRoute(path) && hasSessionCookie {
		return Decision{Location: g.dashboardPath}
	}

	return Decision{Allow: true}
}

// Middleware applies the decision at the edge, before anything renders
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(g.sessionCookieName)
		decision := g.Decide(r.URL.Path, err == nil)

		if !decision.Allow {
			http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) isProtected(path string) bool {
	return hasAnyPrefix(path, g.protectedPrefixes)
}

func (g *Guard) isAuthRoute(path string) bool {
	return hasAnyPrefix(path, g.authPrefixes)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
