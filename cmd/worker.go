package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/event-management/internal/notification"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const pruneJob = "notification_prune"

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs",
	Long: `Prune read notifications on a cron schedule and tail the notification
broadcast channel into the log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startWorker()
	},
}

func startWorker() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	lg := deps.Logger.With("component", "worker")
	retention := deps.Config.Notification.Retention

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(deps.Config.Notification.PruneSchedule, func() {
		tracker := deps.Metrics.Track(pruneJob)
		n, err := deps.NotificationService.PruneRead(ctx, retention)
		if err := tracker.End(err); err != nil {
			lg.Error("notification prune failed", "error", err)
			return
		}
		lg.Info("notification prune finished", "deleted", n, "retention", retention)
	}); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", deps.Config.Notification.PruneSchedule, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		lg.Info("cron scheduler started", "schedule", deps.Config.Notification.PruneSchedule)
		<-gctx.Done()
		<-scheduler.Stop().Done()
		lg.Info("cron scheduler stopped")
		return nil
	})

	if rb, ok := deps.Broadcaster.(*notification.RedisBroadcaster); ok {
		g.Go(func() error {
			return rb.Subscribe(gctx, lg, func(msg notification.Message) {
				lg.Info("notification broadcast",
					"kind", msg.Kind,
					"user_id", msg.UserID)
			})
		})
	} else {
		lg.Info("redis not available, broadcast tail disabled")
	}

	lg.Info("worker is running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		lg.Error("worker stopped with error", "error", err)
		return err
	}
	lg.Info("worker stopped")
	return nil
}
