package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/authzgate/authzgate/internal/adapter/inbound/http"
	"github.com/authzgate/authzgate/internal/adapter/outbound/sqlstore"
	"github.com/authzgate/authzgate/internal/config"
	"github.com/authzgate/authzgate/internal/service"
)

// auditHeartbeatInterval controls how often the Auditor's background
// goroutine reports the most recent audit entry.
const auditHeartbeatInterval = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision service",
	Long: `Start the authz-gate HTTP server.

Serves the unauthenticated decision surface (/authorize, /authorize/batch,
/health) and the bearer-authenticated management surface (/roles,
/policies) described in the service's external interface.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}

	logger.Info("authz-gate stopped")
	return nil
}

// run wires the durable store, domain services, and HTTP transport together
// and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := sqlstore.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	policyStore := sqlstore.NewPolicyStore(db)
	roleStore := sqlstore.NewRoleStore(db)
	auditStore := sqlstore.NewAuditStore(db)

	cache := service.NewActivePolicyCache()
	registry := service.NewPolicyRegistry(policyStore, cache, logger)
	roles := service.NewRoleGraphService(roleStore)
	auditor := service.NewAuditor(auditStore, logger)
	auditor.Start(ctx, auditHeartbeatInterval)
	defer auditor.Stop()
	decisions := service.NewDecisionService(cache, registry, roles, auditor, logger)

	handler := httptransport.NewHandler(decisions, registry, roles,
		httptransport.WithAdminKey(cfg.AdminAPIKey),
		httptransport.WithLogger(logger),
		httptransport.WithPinger(db),
	)

	transport := httptransport.NewTransport(handler,
		httptransport.WithAddr(cfg.HTTPAddr),
		httptransport.WithTransportLogger(logger),
	)

	logger.Info("authz-gate starting",
		"version", Version,
		"http_addr", cfg.HTTPAddr,
	)

	return transport.Start(ctx)
}
