package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	server "github.com/kazz187/teamboard/internal"
	"github.com/kazz187/teamboard/internal/config"
	"github.com/kazz187/teamboard/internal/evaluation"
	evaluationrepo "github.com/kazz187/teamboard/internal/evaluation/repositoryimpl"
	"github.com/kazz187/teamboard/internal/event"
	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/internal/integration"
	integrationrepo "github.com/kazz187/teamboard/internal/integration/repositoryimpl"
	"github.com/kazz187/teamboard/internal/kpi"
	kpirepo "github.com/kazz187/teamboard/internal/kpi/repositoryimpl"
	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/notification"
	notificationrepo "github.com/kazz187/teamboard/internal/notification/repositoryimpl"
	"github.com/kazz187/teamboard/internal/pushnotification"
	pushsubrepo "github.com/kazz187/teamboard/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/teamboard/internal/report"
	"github.com/kazz187/teamboard/internal/sweeper"
	"github.com/kazz187/teamboard/internal/task"
	taskrepo "github.com/kazz187/teamboard/internal/task/repositoryimpl"
	"github.com/kazz187/teamboard/internal/tasklog"
	tasklogrepo "github.com/kazz187/teamboard/internal/tasklog/repositoryimpl"
	trashrepo "github.com/kazz187/teamboard/internal/trash/repositoryimpl"
	"github.com/kazz187/teamboard/pkg/clog"
	"github.com/kazz187/teamboard/pkg/panicerr"
	"github.com/kazz187/teamboard/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	taskRepo := taskrepo.NewYAMLRepository(store)
	trashRepo := trashrepo.NewYAMLRepository(store)
	taskLogRepo := tasklogrepo.NewYAMLRepository(store)
	kpiRepo := kpirepo.NewYAMLRepository(store)
	evaluationRepo := evaluationrepo.NewYAMLRepository(store)
	notificationRepo := notificationrepo.NewYAMLRepository(store)
	integrationRepo := integrationrepo.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	// Setup trash lifecycle
	recorder := tasklog.NewRecorder(taskLogRepo)
	coord := lifecycle.NewCoordinator(taskRepo, trashRepo,
		lifecycle.WithListener(recorder),
		lifecycle.WithListener(lifecycle.NewEventPublisher(bus)),
		lifecycle.WithPurgeConcurrency(env.SweepEnv.Concurrency),
	)
	sweep := sweeper.New(coord, env.SweepEnv.Interval)

	// Setup servers
	notifications := notification.NewService(notificationRepo, bus)
	taskServer := task.NewServer(taskRepo, recorder, bus)
	lifecycleServer := lifecycle.NewServer(coord, taskRepo, trashRepo)
	sweeperServer := sweeper.NewServer(sweep)
	taskLogServer := tasklog.NewServer(taskLogRepo)
	kpiServer := kpi.NewServer(kpiRepo, bus)
	evaluationServer := evaluation.NewServer(evaluationRepo, notifications, bus)
	notificationServer := notification.NewServer(notifications)
	integrationServer := integration.NewServer(integrationRepo, bus)
	reportServer := report.NewServer(taskRepo, kpiRepo, evaluationRepo)
	eventServer := event.NewServer(bus)

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushNotificationServer := pushnotification.NewServer(vapidEnv, pushSubRepo, pushSender)
	pushDispatcher := pushnotification.NewDispatcher(bus, pushSender)

	srv := server.NewServer(
		config.BaseEnvFromEnv(env),
		taskServer,
		lifecycleServer,
		sweeperServer,
		taskLogServer,
		kpiServer,
		evaluationServer,
		notificationServer,
		integrationServer,
		reportServer,
		eventServer,
		pushNotificationServer,
	)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(panicerr.Background(ctx, "sweeper", sweep.Start))
	wg.Go(panicerr.Background(ctx, "push dispatcher", pushDispatcher.Start))
	if local, ok := store.(*storage.LocalStorage); ok && env.StorageEnv.Watch {
		relay := event.NewStorageRelay(local, bus,
			taskrepo.TasksPrefix,
			trashrepo.TrashPrefix,
			kpirepo.KPIsPrefix,
			evaluationrepo.EvaluationsPrefix,
			notificationrepo.NotificationsPrefix,
			integrationrepo.IntegrationsPrefix,
		)
		wg.Go(panicerr.Background(ctx, "storage relay", relay.Start))
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active connections time to finish after stream contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	wg.Wait()
}
