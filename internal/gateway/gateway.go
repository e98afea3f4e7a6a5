// ABOUTME: Gateway orchestrator for the admin HTTP server lifecycle
// ABOUTME: Manages listeners (TCP or tsnet), routes, retention cron, and shutdown

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/spotfunnel/voiceos-admin/internal/auth"
	"github.com/spotfunnel/voiceos-admin/internal/cache"
	"github.com/spotfunnel/voiceos-admin/internal/config"
	"github.com/spotfunnel/voiceos-admin/internal/remote"
	"github.com/spotfunnel/voiceos-admin/internal/store"
)

// Gateway orchestrates the voiceos-admin server components: the thin
// forwarding routes the dashboard calls, the save endpoint that runs the
// reconciler, and the save-history surface.
type Gateway struct {
	config      *config.Config
	remote      *remote.Client
	store       store.Store
	configCache *cache.Cache[*remote.TenantConfiguration]
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	cron        *cron.Cron
	logger      *slog.Logger

	// inflight guards against a second save starting for a tenant while
	// one is still running; the dashboard's save button is not trusted to
	// disable itself.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New creates a gateway from configuration. The save-history store is opened
// at the configured database path.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening save-history store: %w", err)
	}

	g := &Gateway{
		config:      cfg,
		remote:      remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIToken, cfg.Remote.Timeout),
		store:       sqlStore,
		configCache: cache.New[*remote.TenantConfiguration](cfg.Cache.TTL, cfg.Cache.MaxEntries),
		logger:      logger.With("component", "gateway"),
		inflight:    make(map[string]struct{}),
	}

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/health/ready", g.handleReady)

	g.registerAPIRoutes(mux)

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := g.startRetentionSweep(); err != nil {
		sqlStore.Close()
		return nil, err
	}

	return g, nil
}

// registerAPIRoutes wires the /api handlers behind auth middleware when a
// JWT secret or API key hashes are configured.
func (g *Gateway) registerAPIRoutes(mux *http.ServeMux) {
	api := http.NewServeMux()
	api.HandleFunc("/api/admin/agent-config/", g.handleAgentConfig)
	api.HandleFunc("/api/admin/tenants/", g.handleTenantRoutes)
	api.HandleFunc("/api/admin/preview", g.handlePreview)
	api.HandleFunc("/api/knowledge-bases/", g.handleKnowledgeBases)

	var handler http.Handler = api
	if g.config.Auth.JWTSecret != "" || len(g.config.Auth.APIKeyHashes) > 0 {
		verifier := auth.NewJWTVerifier([]byte(g.config.Auth.JWTSecret))
		apiKeys := auth.NewAPIKeyVerifier(g.config.Auth.APIKeyHashes)
		handler = auth.HTTPAuthMiddleware(verifier, apiKeys)(api)
	} else {
		g.logger.Warn("no auth.jwt_secret or auth.api_key_hashes configured, admin API is unauthenticated")
	}
	mux.Handle("/api/", handler)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests wraps the handler with per-request slog output.
func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		g.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// startRetentionSweep schedules the save-history prune on the configured
// cron expression.
func (g *Gateway) startRetentionSweep() error {
	g.cron = cron.New()
	_, err := g.cron.AddFunc(g.config.History.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		cutoff := time.Now().Add(-g.config.History.Retention)
		if _, err := g.store.PruneSavesBefore(ctx, cutoff); err != nil {
			g.logger.Error("retention sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling retention sweep %q: %w", g.config.History.SweepSchedule, err)
	}
	g.cron.Start()
	return nil
}

// setupTCPListener creates a standard TCP listener for the HTTP server.
func (g *Gateway) setupTCPListener() (net.Listener, error) {
	g.logger.Info("starting gateway", "http_addr", g.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		if g.config.Server.HTTPAddr != "" {
			g.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", g.config.Server.HTTPAddr,
			)
		}
		return g.setupTailscaleListener(ctx)
	}
	return g.setupTCPListener()
}

// setupTailscaleListener creates a tsnet server and returns its HTTP listener.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	if tsCfg.StateDir != "" {
		if err := os.MkdirAll(tsCfg.StateDir, 0700); err != nil {
			return nil, fmt.Errorf("creating tailscale state dir: %w", err)
		}
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       tsCfg.StateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   tsCfg.AuthKey,
	}

	g.logger.Info("starting tailscale node",
		"hostname", tsCfg.Hostname,
		"ephemeral", tsCfg.Ephemeral,
	)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	if tsCfg.Funnel {
		g.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := g.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = g.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		return ln, nil
	}

	ln, err := g.tsnetServer.Listen("tcp", ":80")
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
	}
	return ln, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// Run starts the gateway server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server, cron, tsnet node, cache, and store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	var firstErr error

	if g.httpServer != nil {
		if err := g.httpServer.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("shutting down HTTP server: %w", err)
		}
	}

	if g.cron != nil {
		<-g.cron.Stop().Done()
	}

	if g.tsnetServer != nil {
		if err := g.tsnetServer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing tailscale node: %w", err)
		}
	}

	g.configCache.Close()

	if err := g.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	g.logger.Info("gateway shutdown complete")
	return firstErr
}

// beginSave marks a tenant save as in flight. Returns false if one already is.
func (g *Gateway) beginSave(tenantID string) bool {
	g.inflightMu.Lock()
	defer g.inflightMu.Unlock()
	if _, busy := g.inflight[tenantID]; busy {
		return false
	}
	g.inflight[tenantID] = struct{}{}
	return true
}

// endSave clears the in-flight mark for a tenant.
func (g *Gateway) endSave(tenantID string) {
	g.inflightMu.Lock()
	defer g.inflightMu.Unlock()
	delete(g.inflight, tenantID)
}
