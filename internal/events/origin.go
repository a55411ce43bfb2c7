package events

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// NewSecureUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins is a comma-separated list.
func NewSecureUpgrader(allowedOrigins string, logger *slog.Logger) websocket.Upgrader {
	origins := strings.Split(allowedOrigins, ",")
	filtered := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			filtered = append(filtered, origin)
		}
	}

	// Default to localhost if no origins configured
	if len(filtered) == 0 {
		filtered = []string{"http://localhost:3000"}
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Allow same-origin requests (empty Origin)
			if origin == "" {
				return true
			}

			for _, allowed := range filtered {
				if allowed == origin {
					return true
				}
			}

			if logger != nil {
				logger.Warn("rejected websocket connection",
					slog.String("origin", origin),
					slog.String("remote_ip", r.RemoteAddr))
			}
			return false
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// DefaultUpgrader returns an upgrader that allows all origins (for development)
func DefaultUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}
