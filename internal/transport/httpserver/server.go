package httpserver

import (
	"net/http"
	"time"

	"relief-portal-go/internal/config"
)

const (
	minWriteTimeout = 15 * time.Second
	// joinReads is the most sequential remote reads one request makes: a
	// link table lookup followed by the batched child read.
	joinReads = 2
)

// New builds the gateway server. The write deadline leaves room for a full
// join against the remote store on top of waiting for the session to start.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout(cfg.Supabase.Timeout),
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    64 << 10,
	}
}

func writeTimeout(upstream time.Duration) time.Duration {
	timeout := time.Duration(joinReads+1)*upstream + 5*time.Second
	if timeout < minWriteTimeout {
		return minWriteTimeout
	}
	return timeout
}
