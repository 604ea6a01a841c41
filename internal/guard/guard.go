// Package guard decides, per navigation, whether a view renders or the
// browser is redirected. Every decision is a pure function of the route
// table and the session's authenticated flag.
package guard

import "strings"

const (
	LoginPath    = "/login"
	HomePath     = "/contacts"
	FallbackPath = "/"
)

type Access int

const (
	AuthenticatedOnly Access = iota
	AnonymousOnly
)

func (a Access) String() string {
	switch a {
	case AuthenticatedOnly:
		return "authenticated"
	case AnonymousOnly:
		return "anonymous"
	default:
		return "unknown"
	}
}

// View names rendered by the web layer.
const (
	ViewContacts      = "contacts"
	ViewCreateContact = "contacts.create"
	ViewEditContact   = "contacts.edit"
	ViewLogin         = "login"
	ViewRegister      = "register"
)

type Route struct {
	Pattern string
	View    string
	Access  Access
}

// Routes is the client route table. Patterns use gin syntax so the web layer
// can register them directly.
var Routes = []Route{
	{Pattern: "/", View: ViewContacts, Access: AuthenticatedOnly},
	{Pattern: "/contacts", View: ViewContacts, Access: AuthenticatedOnly},
	{Pattern: "/contacts/create", View: ViewCreateContact, Access: AuthenticatedOnly},
	{Pattern: "/contacts/edit/:id", View: ViewEditContact, Access: AuthenticatedOnly},
	{Pattern: "/login", View: ViewLogin, Access: AnonymousOnly},
	{Pattern: "/register", View: ViewRegister, Access: AnonymousOnly},
}

// Evaluate returns whether a view with the given access may render. When it
// may not, redirect holds the target path.
func Evaluate(access Access, authenticated bool) (redirect string, allowed bool) {
	switch access {
	case AuthenticatedOnly:
		if !authenticated {
			return LoginPath, false
		}
	case AnonymousOnly:
		if authenticated {
			return HomePath, false
		}
	}
	return "", true
}

type Decision struct {
	View     string
	Params   map[string]string
	Redirect string
}

// Allowed reports whether the decision renders a view.
func (d Decision) Allowed() bool { return d.Redirect == "" }

// Resolve looks path up in Routes and evaluates its guard. Paths outside the
// table redirect to FallbackPath.
func Resolve(path string, authenticated bool) Decision {
	for _, r := range Routes {
		params, ok := Match(r.Pattern, path)
		if !ok {
			continue
		}
		if redirect, allowed := Evaluate(r.Access, authenticated); !allowed {
			return Decision{Redirect: redirect}
		}
		return Decision{View: r.View, Params: params}
	}
	return Decision{Redirect: FallbackPath}
}

// Match reports whether path matches a gin-style pattern and returns the
// captured ":name" segments. A trailing slash on path is ignored.
func Match(pattern, path string) (map[string]string, bool) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range ps {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if xs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[name] = xs[i]
			continue
		}
		if seg != xs[i] {
			return nil, false
		}
	}
	return params, true
}
