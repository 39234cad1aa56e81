package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/docs/internal/admin"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/store"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	Store           store.Store      // single source of truth for pages and categories
	Backend         string           // storage backend name reported by /infra
	Pinger          Pinger           // nil when the backend has nothing to ping
	Admin           *admin.Service   // editing operations, used only in edit mode
	EditMode        bool             // true => admin routes are registered
	AllowedHosts    []string         // Host headers allowed to reach the admin API
	AllowedCIDRS    []string         // IPs allowed to access readyz/infra and the admin API
	TrustProxy      bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	AdminRateBurst  int              // admin requests allowed in a burst per client IP
	AdminRatePerMin int              // admin tokens refilled per client IP per minute
}
