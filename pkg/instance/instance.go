package instance

import (
	"os"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/env"
)

const fallbackID = "worker-0"

// GetID identifies this worker process in logs. WORKER_ID wins, then the
// host name.
func GetID() string {
	if id := env.Get("WORKER_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
