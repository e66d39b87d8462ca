package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlas-ops/atlas-erp/cmd/atlas/cli"
	"github.com/atlas-ops/atlas-erp/internal/app"
	"github.com/atlas-ops/atlas-erp/internal/authz"
	"github.com/atlas-ops/atlas-erp/internal/coa"
	"github.com/atlas-ops/atlas-erp/internal/finance"
	financehttp "github.com/atlas-ops/atlas-erp/internal/finance/http"
	"github.com/atlas-ops/atlas-erp/internal/ledger/balances"
	"github.com/atlas-ops/atlas-erp/internal/ledger/expense"
	"github.com/atlas-ops/atlas-erp/internal/ledger/income"
	"github.com/atlas-ops/atlas-erp/internal/ledger/payroll"
	"github.com/atlas-ops/atlas-erp/internal/observability"
	"github.com/atlas-ops/atlas-erp/internal/platform/cache"
	"github.com/atlas-ops/atlas-erp/internal/platform/db"
	"github.com/atlas-ops/atlas-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCommand(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Reports degrade to direct ledger reads when Redis is unavailable.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, serving reports uncached", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	classification := finance.DefaultClassificationTable()
	costs := finance.DefaultCostTable()

	financeRepo := finance.NewRepository(dbpool)
	financeCache := finance.NewCache(redisClient, 10*time.Minute)
	financeService := finance.NewService(financeRepo, financeCache, classification, costs)
	if err := financeCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	authzService := authz.NewService(authz.NewRoleRepository(dbpool), authz.DefaultPolicy())
	guard := authz.Middleware{Service: authzService, Logger: logger}

	coaRepo := coa.NewRepository(dbpool)
	coaService := coa.NewService(coaRepo)

	incomeService := income.NewService(income.NewRepository(dbpool), financeService, logger)
	expenseService := expense.NewService(expense.NewRepository(dbpool), financeService, logger)
	payrollService := payroll.NewService(payroll.NewRepository(dbpool), financeService, logger)
	balanceService := balances.NewService(balances.NewRepository(dbpool), coaRepo, classification, financeService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Guard:          guard,
		FinanceHandler: financehttp.NewHandler(logger, financeService),
		IncomeHandler:  income.NewHandler(logger, incomeService),
		ExpenseHandler: expense.NewHandler(logger, expenseService),
		PayrollHandler: payroll.NewHandler(logger, payrollService),
		BalanceHandler: balances.NewHandler(logger, balanceService),
		CoaHandler:     coa.NewHandler(logger, coaService),
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobsCommand(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: atlas jobs <trigger TASK|stats|scheduled>")
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("usage: atlas jobs trigger <task>")
		}
		info, err := jobsCLI.Trigger(ctx, args[1], cfg.AlertRecipients)
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", args[1], info.ID, info.Queue)
		return nil
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return nil
	case "scheduled":
		tasks, err := jobsCLI.ListScheduled(ctx, 10)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			fmt.Printf("%s %s next=%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
		}
		return nil
	default:
		return fmt.Errorf("jobs: unknown subcommand %s", args[0])
	}
}
