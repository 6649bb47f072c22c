package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/adapter/httpapi"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/adapter/repository/postgres"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/adapter/simplefin"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/config"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/paymatch"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/syncer"
)

func main() {
	root := &cobra.Command{
		Use:   "looops",
		Short: "Bank sync engine for the looops app",
	}
	root.AddCommand(newServeCmd(), newSyncCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired-up services shared by the subcommands.
type app struct {
	cfg      *config.Config
	sync     *syncer.Service
	payments domain.PaymentRepository
	logger   *log.Logger
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	svc := syncer.NewService(
		simplefin.NewClient(cfg.FetchTimeout),
		postgres.NewConnectionRepository(db),
		postgres.NewAccountRepository(db),
		postgres.NewTransactionRepository(db),
		postgres.NewRuleRepository(db),
	)
	svc.Policy = cfg.PostedUpdatePolicy
	svc.Logger = logger

	return &app{
		cfg:      cfg,
		sync:     svc,
		payments: postgres.NewPaymentRepository(db),
		logger:   logger,
	}, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sync HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}

			api := httpapi.NewServer(a.sync, a.sync.Connections, a.logger)
			srv := &http.Server{
				Addr:    a.cfg.HTTPAddr,
				Handler: api.Routes(),
			}

			go func() {
				a.logger.Printf("HTTP server listening on %s", a.cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Fatalf("Failed to serve HTTP: %v", err)
				}
			}()

			waitForShutdown(a.logger, srv)
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	var (
		accessURL    string
		balancesOnly bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync attempt for an access URL and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			conn, err := findOrCreateConnection(ctx, a.sync.Connections, accessURL)
			if err != nil {
				return fmt.Errorf("failed to resolve connection: %w", err)
			}

			outcome, err := a.sync.Sync(ctx, conn, syncer.Options{BalancesOnly: balancesOnly})
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Printf("Synced %d accounts: %d new, %d updated, %d unchanged transactions\n",
				len(outcome.Accounts), len(outcome.NewTransactions),
				len(outcome.UpdatedTransactions), outcome.Unchanged)
			for _, msg := range outcome.Errors {
				fmt.Printf("Provider notice: %s\n", msg)
			}

			return matchPayments(ctx, a, conn.ID)
		},
	}
	cmd.Flags().StringVar(&accessURL, "access-url", "", "SimpleFIN access URL (claimed)")
	cmd.Flags().BoolVar(&balancesOnly, "balances-only", false, "refresh balances without transactions")
	cmd.MarkFlagRequired("access-url")
	return cmd
}

// matchPayments binds pending scheduled payments to the connection's
// outgoing transfers and records each match.
func matchPayments(ctx context.Context, a *app, connectionID uuid.UUID) error {
	pending, err := a.payments.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending payments: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	txs, err := a.sync.Transactions.ListByConnection(ctx, connectionID)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	for _, m := range paymatch.MatchPayments(pending, txs) {
		if err := a.payments.MarkMatched(ctx, m.Payment.ID, m.Transaction.ID); err != nil {
			return fmt.Errorf("failed to record payment match: %w", err)
		}
		fmt.Printf("Matched payment %q (%s) to %q\n",
			m.Payment.Payee, m.Payment.ReferenceCode, m.Transaction.Provider.CleanDescription)
	}
	return nil
}

func findOrCreateConnection(ctx context.Context, repo domain.ConnectionRepository, accessURL string) (*domain.Connection, error) {
	conn, err := repo.GetByAccessURL(ctx, accessURL)
	if err == nil {
		return conn, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	conn = &domain.Connection{
		ID:        uuid.New(),
		Provider:  "simplefin",
		AccessURL: accessURL,
		Status:    domain.ConnectionStatusActive,
	}
	if err := repo.Create(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(logger *log.Logger, srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Printf("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("HTTP server shutdown: %v", err)
	}
	logger.Println("HTTP server stopped")
}
