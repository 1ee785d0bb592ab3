package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicflow/config"
	clinicRepo "clinicflow/database/repository/clinic"
	"clinicflow/services/calendar"
	"clinicflow/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeCalendarSync = "calendar:sync"

// syncPayload identifies the clinic one sync task covers.
type syncPayload struct {
	ClinicID string `json:"clinicId"`
}

// InitSyncWorker runs the periodic calendar sync in the background: a
// scheduler that fans out one task per clinic at the configured interval, and
// a worker that runs the reconciliation plus the unsynced-appointment push.
func InitSyncWorker(engine *calendar.SyncEngine, directory clinicRepo.DirectoryRepository) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSyncDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCalendarSync, handleSyncTask(engine))

	go monitorRedisConnection(redisOpts)
	go scheduleClinicSyncs(redisOpts, directory)

	// Start async worker with retry logic.
	go func() {
		logger.Info("starting calendar sync worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("failed to start sync worker",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("sync worker could not start, giving up")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// scheduleClinicSyncs enqueues one sync task per known clinic every interval.
// A plain ticker keeps the fan-out in-process; the tasks themselves go through
// asynq so failed runs retry with its backoff.
func scheduleClinicSyncs(redisOpts asynq.RedisClientOpt, directory clinicRepo.DirectoryRepository) {
	logger := utils.GetLogger()
	client := asynq.NewClient(redisOpts)
	defer client.Close()

	interval := time.Duration(config.AppConfig.SyncIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		<-ticker.C
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		clinics, err := directory.ListClinics(ctx)
		cancel()
		if err != nil {
			logger.Warn("failed to list clinics for sync fan-out", zap.Error(err))
			continue
		}
		for _, c := range clinics {
			payload, err := json.Marshal(syncPayload{ClinicID: c.ID})
			if err != nil {
				continue
			}
			task := asynq.NewTask(TypeCalendarSync, payload)
			if _, err := client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)); err != nil {
				logger.Warn("failed to enqueue sync task",
					zap.String("clinicID", c.ID), zap.Error(err))
			}
		}
	}
}

func handleSyncTask(engine *calendar.SyncEngine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p syncPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid sync task payload", zap.Error(err))
			return err
		}

		// Sliding window: a week back for late cancellations, the booking
		// horizon forward.
		now := time.Now()
		start := now.AddDate(0, 0, -7)
		end := now.AddDate(0, 0, config.AppConfig.MaxAdvanceDays)

		summary, err := engine.SyncEvents(ctx, p.ClinicID, start, end)
		if err != nil {
			logger.Warn("calendar sync task failed",
				zap.String("clinicID", p.ClinicID), zap.Error(err))
			return err
		}
		if summary.Errors > 0 {
			logger.Warn("calendar sync finished with errors",
				zap.String("clinicID", p.ClinicID), zap.Int("errors", summary.Errors))
		}

		pushed, err := engine.PushAppointments(ctx, p.ClinicID, now, end)
		if err != nil {
			return fmt.Errorf("failed to push unsynced appointments for clinic %s: %w", p.ClinicID, err)
		}
		if pushed > 0 {
			logger.Info("pushed deferred appointments to calendar",
				zap.String("clinicID", p.ClinicID), zap.Int("pushed", pushed))
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(opts asynq.RedisClientOpt) {
	logger := utils.GetLogger()
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("sync queue redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
