// Package server exposes the table controller over HTTP for browser viewing.
//
// The JSON API mirrors the terminal viewer: one shared controller holds the
// dataset, search term and page, and every request reads a fresh View.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"csvview/internal/dataset"
	"csvview/internal/loader"
	"csvview/internal/logging"
	"csvview/internal/store"
	"csvview/internal/table"
)

//go:embed web/*
var staticAssets embed.FS

// Clearer deletes persisted data.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Options configure a Server.
type Options struct {
	// MaxUpload caps the multipart body size; zero means 64 MiB.
	MaxUpload int64
}

// Server serves the viewer API and the static page.
type Server struct {
	mu     sync.Mutex
	ctrl   *table.Controller
	loader *loader.Loader
	store  Clearer
	opts   Options
	router *mux.Router

	// uploaded is set once a browser upload has replaced the served data.
	uploaded bool
}

// New wires the routes. loader and store may be nil to disable uploads
// and clearing.
func New(ctrl *table.Controller, l *loader.Loader, st Clearer, opts Options) *Server {
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 64 << 20
	}
	s := &Server{ctrl: ctrl, loader: l, store: st, opts: opts}

	r := mux.NewRouter()
	r.Use(logRequests)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/meta", s.meta).Methods(http.MethodGet)
	api.HandleFunc("/page", s.page).Methods(http.MethodGet)
	api.HandleFunc("/row/{index:[0-9]+}", s.row).Methods(http.MethodGet)
	api.HandleFunc("/upload", s.upload).Methods(http.MethodPost)
	api.HandleFunc("/data", s.clear).Methods(http.MethodDelete)

	assets, err := fs.Sub(staticAssets, "web")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/").Methods(http.MethodGet, http.MethodHead).Handler(http.FileServer(http.FS(assets)))

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Load replaces the dataset, e.g. after the watched file changed.
func (s *Server) Load(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Load(ds)
}

// Reload replaces the dataset with a fresh read of the served file. It
// reports false and keeps the current data once an upload has replaced it.
func (s *Server) Reload(ds *dataset.Dataset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploaded {
		return false
	}
	s.ctrl.Load(ds)
	return true
}

// Listen opens the listening socket so callers can learn the bound address
// before serving.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}

// URL returns the browser address for a listener.
func URL(ln net.Listener) string {
	addr := ln.Addr().String()
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok && (tcp.IP.IsUnspecified() || tcp.IP == nil) {
		addr = net.JoinHostPort("localhost", strconv.Itoa(tcp.Port))
	}
	return "http://" + addr + "/"
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logging.Server("Serving on %s", URL(ln))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		logging.Server("Server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := logging.StartTimer(logging.CategoryServer, r.Method+" "+r.URL.Path)
		next.ServeHTTP(w, r)
		timer.StopWithThreshold(500 * time.Millisecond)
	})
}

type metaResponse struct {
	Source        string   `json:"source"`
	Headers       []string `json:"headers"`
	TotalRecords  int      `json:"total_records"`
	FilteredCount int      `json:"filtered_count"`
	Query         string   `json:"query"`
	PageSize      int      `json:"page_size"`
	HasData       bool     `json:"has_data"`
}

type fieldJSON struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type rowResponse struct {
	Row    int         `json:"row"` // 1-based position in the filtered set
	Fields []fieldJSON `json:"fields"`
}

type uploadResponse struct {
	Summary string     `json:"summary"`
	Warning string     `json:"warning,omitempty"`
	View    table.View `json:"view"`
}

func (s *Server) meta(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	v := s.ctrl.Snapshot()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, metaResponse{
		Source:        v.Source,
		Headers:       v.Headers,
		TotalRecords:  v.TotalRecords,
		FilteredCount: v.FilteredCount,
		Query:         v.Query,
		PageSize:      v.PageSize,
		HasData:       v.Controls.HasData,
	})
}

// position applies the q and page query parameters to the controller.
// A changed q resets to page 1 before page is applied. Callers hold s.mu.
func (s *Server) position(r *http.Request) error {
	q := r.URL.Query()
	if _, ok := q["q"]; ok && q.Get("q") != s.ctrl.Query() {
		s.ctrl.SetQuery(q.Get("q"))
	}
	if raw := q.Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid page %q", raw)
		}
		s.ctrl.GoTo(p)
	}
	return nil
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.position(r); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) row(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.position(r); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fields, ok := s.ctrl.Detail(index)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no row %d on page %d", index, s.ctrl.Page()))
		return
	}

	resp := rowResponse{Fields: make([]fieldJSON, 0, len(fields))}
	resp.Row = (s.ctrl.Page()-1)*s.ctrl.Options().PageSize + index + 1
	for _, f := range fields {
		resp.Fields = append(resp.Fields, fieldJSON{Label: f.Label, Value: f.Value})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if s.loader == nil {
		writeError(w, http.StatusNotImplemented, errors.New("uploads are disabled"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	res, err := s.loader.LoadBytes(r.Context(), header.Filename, data)
	if err != nil {
		logging.ServerError("Upload %s failed: %v", header.Filename, err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.mu.Lock()
	s.ctrl.Load(res.Dataset)
	s.uploaded = true
	v := s.ctrl.Snapshot()
	s.mu.Unlock()

	resp := uploadResponse{Summary: res.Summary(), View: v}
	switch {
	case errors.Is(res.SaveErr, store.ErrTooLarge):
		resp.Warning = "Data too large to save locally; it will not be restored next time."
	case res.SaveErr != nil:
		resp.Warning = fmt.Sprintf("Could not save locally: %v", res.SaveErr)
	}
	logging.Server("Upload: %s", resp.Summary)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Clear(r.Context()); err != nil {
			logging.ServerError("Clear failed: %v", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	s.mu.Lock()
	s.ctrl.Load(nil)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.ServerError("Encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
