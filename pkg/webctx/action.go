package webctx

import (
	"fmt"
	"net/http"
)

// ActionKind discriminates HttpAction variants.
type ActionKind string

const (
	ActionOK       ActionKind = "ok"
	ActionRedirect ActionKind = "redirect"
	ActionError    ActionKind = "error"
)

// HttpAction is the terminal result a core component hands back to the
// transport layer. Headers set through WebContext.SetResponseHeader are not
// part of the action; they are applied by the adapter that owns the response.
type HttpAction struct {
	Kind     ActionKind
	Code     int
	Body     string
	Location string
}

// OK returns a 200 action with the given body. An empty body is valid and
// common for acknowledgement responses.
func OK(body string) HttpAction {
	return HttpAction{Kind: ActionOK, Code: http.StatusOK, Body: body}
}

// Redirect returns a 302 action to the given location.
func Redirect(location string) HttpAction {
	return HttpAction{Kind: ActionRedirect, Code: http.StatusFound, Location: location}
}

// Error returns an error action with the given status code.
func Error(code int) HttpAction {
	return HttpAction{Kind: ActionError, Code: code}
}

// WriteTo materializes the action onto a net/http response.
func (a HttpAction) WriteTo(w http.ResponseWriter) {
	switch a.Kind {
	case ActionRedirect:
		w.Header().Set("Location", a.Location)
		w.WriteHeader(a.Code)
	case ActionError:
		http.Error(w, http.StatusText(a.Code), a.Code)
	default:
		w.WriteHeader(a.Code)
		if a.Body != "" {
			fmt.Fprint(w, a.Body)
		}
	}
}
