package plot

import (
	"fmt"
	"net/http"
)

// HTTPServer defines the interface for an HTTP server that Chart will use
type HTTPServer interface {
	// RegisterHandler registers a handler function for a specific route
	RegisterHandler(path string, handler http.HandlerFunc)

	// RegisterRawHandler registers an http.Handler for a specific route
	RegisterRawHandler(path string, handler http.Handler)

	// Start starts the HTTP server on the specified port
	Start(port int) error
}

// StandardHTTPServer implements the HTTPServer interface on its own mux
type StandardHTTPServer struct {
	mux *http.ServeMux
}

// NewStandardHTTPServer creates a new instance of StandardHTTPServer
func NewStandardHTTPServer() *StandardHTTPServer {
	return &StandardHTTPServer{mux: http.NewServeMux()}
}

// RegisterHandler registers a handler function for a specific route
func (s *StandardHTTPServer) RegisterHandler(path string, handler http.HandlerFunc) {
	s.mux.HandleFunc(path, handler)
}

// RegisterRawHandler registers an http.Handler for a specific route
func (s *StandardHTTPServer) RegisterRawHandler(path string, handler http.Handler) {
	s.mux.Handle(path, handler)
}

// Start starts the HTTP server on the specified port
func (s *StandardHTTPServer) Start(port int) error {
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.mux)
}
