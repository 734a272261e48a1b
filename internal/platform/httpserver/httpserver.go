package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server for the identity endpoints. Request and response
// bodies are small JSON documents, so the read and write timeouts are tight;
// idle keep-alive connections may linger longer.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
