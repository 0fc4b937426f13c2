package health

import (
	"net/http"
	"runtime"

	"github.com/goccy/go-json"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/version"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns an HTTP handler for the liveness endpoint.
//
// Example response:
//
//	{
//	    "status": "ok",
//	    "uptime": "3h12m5s",
//	    "timestamp": "2026-10-14T10:30:00Z"
//	}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowed(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler returns an HTTP handler for the readiness endpoint.
//
// A degraded assistant still answers 200 since sessions work without
// snapshots. Only a failed required check returns 503:
//
//	{
//	    "status": "unavailable",
//	    "checks": {
//	        "plans": {"status": "unhealthy", "message": "no plans loaded"},
//	        "sessions": {"status": "ok", "optional": true}
//	    },
//	    "timestamp": "2026-10-14T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowed(w, r) {
			return
		}

		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if status.Status == StatusUnavailable {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	}
}

// VersionHandler returns an HTTP handler reporting the build information
// from the version package.
func VersionHandler() http.HandlerFunc {
	info := VersionInfo{
		Version:   version.Version,
		Commit:    version.GitCommit,
		BuildTime: version.BuildDate,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !allowed(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, info)
	}
}

// Mount registers the health endpoints on mux:
//   - /health: liveness
//   - /ready: readiness
//   - /version: build information
//
// Usage:
//
//	mux := http.NewServeMux()
//	checker.Mount(mux)
func (c *Checker) Mount(mux *http.ServeMux) {
	mux.HandleFunc("/health", c.LivenessHandler())
	mux.HandleFunc("/ready", c.ReadinessHandler())
	mux.HandleFunc("/version", VersionHandler())
}

func allowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
