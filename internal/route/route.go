// Package route resolves a client path to the page it shows. It is a pure
// function of the path and whether a credential is stored.
package route

import "strings"

// Page identifies a top level view.
type Page string

const (
	PageLogin        Page = "login"
	PageRegister     Page = "register"
	PageDashboard    Page = "dashboard"
	PageDocumentSign Page = "documentSign"
	PageShare        Page = "share"
	PageNotFound     Page = "notfound"
)

const (
	ParamDocumentID = "documentId"
	ParamToken      = "token"
)

// Well known paths used as navigation targets.
const (
	PathHome      = "/"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// Route is a resolved path.
type Route struct {
	Page   Page
	Params map[string]string
}

// Resolve maps path to a page. Share links resolve whether or not the
// visitor is logged in; everything else depends on hasCredential.
func Resolve(path string, hasCredential bool) Route {
	if token, ok := tail(path, "/share/"); ok {
		return Route{Page: PageShare, Params: map[string]string{ParamToken: token}}
	}
	if hasCredential {
		if id, ok := tail(path, "/document/"); ok {
			return Route{Page: PageDocumentSign, Params: map[string]string{ParamDocumentID: id}}
		}
		if path == "/" || path == "/dashboard" {
			return Route{Page: PageDashboard}
		}
		return Route{Page: PageNotFound}
	}
	switch path {
	case "/register":
		return Route{Page: PageRegister}
	case "/", "/login":
		return Route{Page: PageLogin}
	}
	return Route{Page: PageNotFound}
}

// Param returns a path parameter or "".
func (r Route) Param(name string) string {
	return r.Params[name]
}

var titles = map[Page]string{
	PageLogin:        "Login | V-Doc Sign",
	PageRegister:     "Register | V-Doc Sign",
	PageDashboard:    "Dashboard | V-Doc Sign",
	PageDocumentSign: "Sign Document | V-Doc Sign",
	PageShare:        "Shared Document | V-Doc Sign",
}

// Title returns the window title for p.
func Title(p Page) string {
	if t, ok := titles[p]; ok {
		return t
	}
	return "V-Doc Sign"
}

// Fallback is the path offered from the not-found page.
func Fallback(hasCredential bool) string {
	if hasCredential {
		return PathDashboard
	}
	return PathLogin
}

func tail(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}
