package server

import "github.com/vango-dev/vnav/pkg/history"

// Client message types.
const (
	msgNavigate = "navigate"
	msgPopstate = "popstate"
)

// Server message types.
const (
	msgPush    = "push"
	msgReplace = "replace"
	msgAssign  = "assign"
	msgRender  = "render"
	msgActive  = "active"
	msgError   = "error"
)

type clientMessage struct {
	Type   string        `json:"type"`
	Target string        `json:"target,omitempty"`
	URL    string        `json:"url,omitempty"`
	State  history.State `json:"state"`
}

type serverMessage struct {
	Type   string         `json:"type"`
	URL    string         `json:"url,omitempty"`
	State  *history.State `json:"state,omitempty"`
	HTML   string         `json:"html,omitempty"`
	Title  string         `json:"title,omitempty"`
	Route  string         `json:"route,omitempty"`
	Phase  string         `json:"phase,omitempty"`
	Active bool           `json:"active,omitempty"`
	Error  string         `json:"error,omitempty"`
}
