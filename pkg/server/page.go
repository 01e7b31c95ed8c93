package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/vango-dev/vnav/pkg/auth"
	"github.com/vango-dev/vnav/pkg/history"
	"github.com/vango-dev/vnav/pkg/navbus"
	"github.com/vango-dev/vnav/pkg/routing"
)

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main id="vnav-root" data-route="{{.Route}}">{{.Body}}</main>
<script src="{{.ClientPath}}" defer></script>
</body>
</html>
`))

type shellData struct {
	Title      string
	Route      string
	Body       template.HTML
	ClientPath string
}

// servePage renders the page for the request URL with a one-shot router.
// Guard redirects become HTTP redirects.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	mem := history.NewMemory(r.URL.RequestURI())
	bus := navbus.New(mem, navbus.WithLogger(s.logger))
	defer bus.Close()

	guard := auth.NewGuard(nil)
	if p, ok := auth.FromContext(r.Context()); ok {
		guard.Set(&p)
	}

	loaded := make(chan struct{}, 1)
	ctrl := routing.NewController(bus, s.table,
		routing.WithAuth(guard.IsLoggedIn),
		routing.WithRegistry(s.registry),
		routing.WithDispatcher(routing.DispatcherFunc(func(fn func()) {
			fn()
			loaded <- struct{}{}
		})),
		routing.WithLogger(s.logger.With("component", "router")),
		routing.WithMetrics(s.metrics),
		routing.WithLoginPath(s.config.LoginPath),
		routing.WithHomePath(s.config.HomePath),
		routing.WithContext(r.Context()))

	if err := ctrl.Mount(); err != nil {
		s.logger.Error("page render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "no routes configured", http.StatusInternalServerError)
		return
	}
	defer ctrl.Unmount()

	if ctrl.Phase() == routing.PhaseResolving {
		select {
		case <-loaded:
		case <-r.Context().Done():
			return
		}
	}

	if loads := mem.Loads(); len(loads) > 0 {
		http.Redirect(w, r, loads[len(loads)-1], http.StatusSeeOther)
		return
	}

	state := ctrl.State()
	data := shellData{
		Title:      s.config.Title,
		ClientPath: ClientPath,
	}
	status := http.StatusOK
	switch {
	case state.CurrentRoute == nil:
		status = http.StatusNotFound
	case state.Err != nil:
		status = http.StatusInternalServerError
	}
	if cur := state.CurrentRoute; cur != nil {
		data.Route = cur.Path
		if cur.Title != "" {
			data.Title = cur.Title
		}
	}
	if state.Element != nil {
		data.Body = template.HTML(state.Element.HTML())
	}

	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("page template failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
