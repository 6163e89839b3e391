package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"wellvix/config"
	"wellvix/services/order"
	"wellvix/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeAutoCompleteSweep = "orders:auto_complete"

// InitSweepWorker runs the periodic auto-completion sweep in background.
func InitSweepWorker(orderSvc order.Service) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAutoCompleteSweep, handleSweepTask(orderSvc))

	go monitorRedisConnection()
	go runScheduler(redisOpts)

	// Start async worker with retry logic
	go func() {
		log.Println("[SweepWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweepWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweepWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// runScheduler enqueues the sweep task on a fixed cadence.
func runScheduler(redisOpts asynq.RedisClientOpt) {
	interval := config.AppConfig.SweepIntervalMinutes
	if interval <= 0 {
		interval = 10
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	spec := fmt.Sprintf("@every %dm", interval)
	if _, err := scheduler.Register(spec, asynq.NewTask(TypeAutoCompleteSweep, nil)); err != nil {
		log.Fatalf("[SweepWorker] failed to register sweep schedule: %v", err)
	}

	log.Printf("[SweepWorker] sweep scheduled %s", spec)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("[SweepWorker] scheduler stopped: %v", err)
	}
}

func handleSweepTask(orderSvc order.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger().Named("SweepWorker")

		results, err := orderSvc.SweepAutoComplete(ctx)
		if err != nil {
			logger.Error("sweep run failed", zap.Error(err))
			return err
		}

		failed := 0
		for _, r := range results {
			if !r.OK {
				failed++
			}
		}
		if len(results) > 0 {
			logger.Info("sweep run finished",
				zap.Int("processed", len(results)), zap.Int("failed", failed))
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SweepWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
