// The eligibility-api binary serves the Eligibility Calculator: an
// eligibility_check/eligibility_explain_cohort MCP tool surface over
// SSE, a health endpoint, and a CampaignConfig CRD controller that keeps
// internal/eligibility/configstore populated alongside its MySQL and OCI
// sources. Runs as a standalone binary in the same style as the
// control-plane binary it is adapted from.
package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	k8sruntime "k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	eligibilityv1alpha1 "github.com/nhsdigital/eligibility-signposting-api/api/v1alpha1"
	"github.com/nhsdigital/eligibility-signposting-api/internal/controller"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/calculator"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configstore"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/mcpserver"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/metrics"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/personstore"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/telemetry"
)

var (
	version = "dev"
	commit  = "none"
)

type config struct {
	ListenAddr     string
	ProbeAddr      string
	APIToken       string
	MySQLDSN       string
	PostgresDSN    string
	OCIRegistry    string
	OCIPath        string
	OCITag         string
	OTELEndpoint   string
	RefreshCronExp string
}

func loadConfig() config {
	return config{
		ListenAddr:     envOrDefault("ELIGIBILITY_LISTEN_ADDR", ":8090"),
		ProbeAddr:      envOrDefault("ELIGIBILITY_PROBE_ADDR", ":8081"),
		APIToken:       os.Getenv("ELIGIBILITY_API_TOKEN"),
		MySQLDSN:       os.Getenv("ELIGIBILITY_MYSQL_DSN"),
		PostgresDSN:    os.Getenv("ELIGIBILITY_POSTGRES_DSN"),
		OCIRegistry:    os.Getenv("ELIGIBILITY_OCI_REGISTRY"),
		OCIPath:        envOrDefault("ELIGIBILITY_OCI_PATH", "eligibility/campaigns"),
		OCITag:         envOrDefault("ELIGIBILITY_OCI_TAG", "latest"),
		OTELEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RefreshCronExp: envOrDefault("ELIGIBILITY_CONFIG_REFRESH_CRON", "*/5 * * * *"),
	}
}

func main() {
	zapLogger, _ := zap.NewProduction()
	defer zapLogger.Sync()
	logger := zapr.NewLogger(zapLogger)

	ctrl.SetLogger(logger)
	cfg := loadConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracer, err := telemetry.InitTraceProvider(ctx, cfg.OTELEndpoint, version)
	if err != nil {
		logger.Error(err, "failed to initialise OTel tracing, continuing without traces")
	} else {
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			if err := shutdownTracer(shutCtx); err != nil {
				logger.Error(err, "failed to shutdown OTel tracer")
			}
		}()
	}

	var sources []configstore.Source
	if cfg.MySQLDSN != "" {
		mysqlSource, err := configstore.OpenMySQLSource(cfg.MySQLDSN)
		if err != nil {
			logger.Error(err, "failed to open MySQL campaign config source")
			os.Exit(1)
		}
		defer mysqlSource.Close()
		sources = append(sources, mysqlSource)
	} else {
		logger.Info("MySQL campaign config source disabled", "reason", "ELIGIBILITY_MYSQL_DSN not set")
	}
	if cfg.OCIRegistry != "" {
		ociSource := configstore.NewOCISource(configstore.OCIRef{
			Registry: cfg.OCIRegistry,
			Path:     cfg.OCIPath,
			Tag:      cfg.OCITag,
		})
		sources = append(sources, ociSource)
	} else {
		logger.Info("OCI campaign config source disabled", "reason", "ELIGIBILITY_OCI_REGISTRY not set")
	}

	store := configstore.New(sources...)
	if len(sources) > 0 {
		if outcomes := store.Refresh(ctx); len(outcomes) > 0 {
			for name, err := range outcomes {
				if err != nil {
					logger.Error(err, "initial campaign config load failed", "source", name)
				}
			}
		}
	}

	var people *personstore.Store
	if cfg.PostgresDSN != "" {
		people, err = personstore.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Error(err, "failed to open person attribute store")
			os.Exit(1)
		}
		defer people.Close()
	} else {
		logger.Info("Person attribute store disabled", "reason", "ELIGIBILITY_POSTGRES_DSN not set")
	}

	calc := calculator.New(logger.WithName("calculator"))
	// people is passed through a conditional rather than directly, since
	// a nil *personstore.Store assigned straight into the interface
	// parameter would produce a non-nil interface wrapping a nil pointer.
	var mcp *mcpserver.Server
	if people != nil {
		mcp = mcpserver.New(calc, store, people, logger.WithName("mcp"))
	} else {
		mcp = mcpserver.New(calc, store, nil, logger.WithName("mcp"))
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 newScheme(),
		Metrics:                metricsserver.Options{BindAddress: "0"},
		HealthProbeBindAddress: cfg.ProbeAddr,
		LeaderElection:         false,
	})
	if err != nil {
		logger.Error(err, "failed to start controller manager")
		os.Exit(1)
	}
	if err := (&controller.CampaignConfigReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
		Store:  store,
	}).SetupWithManager(mgr); err != nil {
		logger.Error(err, "failed to create CampaignConfig controller")
		os.Exit(1)
	}

	go func() {
		if err := mgr.Start(ctx); err != nil {
			logger.Error(err, "controller manager stopped")
		}
	}()

	go scheduleRefresh(ctx, cfg.RefreshCronExp, store, logger.WithName("config-refresh"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"version":"%s","commit":"%s"}`+"\n", version, commit)
	})
	mux.Handle("/mcp", requireToken(cfg.APIToken, mcp.Handler()))
	mux.Handle("/metrics", promhttp.HandlerFor(ctrlmetrics.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("starting eligibility-api", "addr", cfg.ListenAddr, "version", version)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(err, "server error")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "shutdown error")
	}
}

// requireToken enforces a single static bearer token against every
// request when token is non-empty. With no token configured, the handler
// is left unauthenticated.
func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	expected := []byte("Bearer " + token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// scheduleRefresh parses spec as a standard cron expression and calls
// store.Refresh each time it comes due, using Schedule.Next() to decide
// when a refresh is due rather than running a full cron.Cron daemon.
func scheduleRefresh(ctx context.Context, spec string, store *configstore.Store, logger logr.Logger) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		logger.Error(err, "invalid config refresh schedule, refresh disabled", "schedule", spec)
		return
	}

	next := schedule.Next(time.Now())
	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			outcomes := store.Refresh(ctx)
			for name, err := range outcomes {
				if err != nil {
					logger.Error(err, "campaign config refresh failed", "source", name)
					metrics.RecordConfigRefresh(name, "error")
					continue
				}
				metrics.RecordConfigRefresh(name, "ok")
			}
			next = schedule.Next(time.Now())
		}
	}
}

func newScheme() *k8sruntime.Scheme {
	s := k8sruntime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(s))
	utilruntime.Must(eligibilityv1alpha1.AddToScheme(s))
	return s
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
