// Package httpview serves a live crawler.GraphView over HTTP: a minimal
// monitor a human (or a dashboard) can point a browser at while a bulk
// traversal runs, grounded on original_source/state_machine_crawler/
// webview.py's route shape (index page, /graph.<format>, /kill).
package httpview

import (
	"context"
	"fmt"
	"net"
	"net/http"

	crawler "github.com/pombredanne/state-machine-crawler"
	"github.com/pombredanne/state-machine-crawler/serialize"
)

// Snapshotter is anything that can produce the current GraphView, normally
// a *crawler.Crawler[S] for some S.
type Snapshotter interface {
	AsGraph() crawler.GraphView
}

// View is an HTTP front-end over a Snapshotter. It is safe to start while
// a crawler's Move/VerifyAllStates run on their own goroutine, because
// every response is built from an immutable GraphView snapshot rather
// than the live crawler.
type View struct {
	snap   Snapshotter
	server *http.Server
}

// New builds a View bound to addr (e.g. "localhost:8666"), mirroring the
// original's fixed localhost:8666 default.
func New(addr string, snap Snapshotter) *View {
	v := &View{snap: snap}
	mux := http.NewServeMux()
	mux.HandleFunc("/", v.handleIndex)
	mux.HandleFunc("/graph.dot", v.handleGraph(serialize.DOT, "application/dot"))
	mux.HandleFunc("/graph.txt", v.handleGraph(serialize.Text, "text/plain"))
	mux.HandleFunc("/kill", v.handleKill)
	v.server = &http.Server{Addr: addr, Handler: mux}
	return v
}

// Start runs the server in the background. It returns once the listener is
// ready to accept connections or an error occurs starting it up.
func (v *View) Start() error {
	ln, err := net.Listen("tcp", v.server.Addr)
	if err != nil {
		return err
	}
	go func() {
		_ = v.server.Serve(ln)
	}()
	return nil
}

// Stop shuts the server down, equivalent to the original's WebView.stop().
func (v *View) Stop(ctx context.Context) error {
	return v.server.Shutdown(ctx)
}

func (v *View) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintln(w, "state machine crawler viewer - see /graph.dot or /graph.txt")
}

func (v *View) handleGraph(render func(crawler.GraphView) string, mimetype string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", mimetype)
		fmt.Fprint(w, render(v.snap.AsGraph()))
	}
}

func (v *View) handleKill(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "Killed")
	go func() {
		_ = v.server.Shutdown(context.Background())
	}()
}
