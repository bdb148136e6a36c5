package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/config"
	"github.com/somang-edu/eduportal-backend/internal/service"
)

const statsPollTimeout = 1 * time.Second

// StatsWorker drains the refresh queue and recomputes the cached report for
// each exam that received or lost a result. Duplicate queue entries for the
// same exam just rebuild the same report, so the queue needs no dedup.
type StatsWorker struct {
	resultSvc *service.ResultService
	rdb       *redis.Client
	log       zerolog.Logger
}

func NewStatsWorker(resultSvc *service.ResultService, rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		resultSvc: resultSvc,
		rdb:       rdb,
		log:       log.With().Str("component", "stats_worker").Logger(),
	}
}

func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Draining refresh queue...")
			w.drain()
			return

		default:
			item, err := w.rdb.BLPop(ctx, statsPollTimeout, config.WorkerKey.RefreshStatsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}
			w.refresh(ctx, item[1])
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context, rawExamID string) {
	examID, err := uuid.Parse(rawExamID)
	if err != nil {
		w.log.Error().Str("exam_id", rawExamID).Msg("Invalid exam id on queue")
		return
	}
	if _, err := w.resultSvc.Refresh(ctx, examID); err != nil {
		w.log.Error().Err(err).Str("exam_id", rawExamID).Msg("Report refresh failed")
	}
}

// drain processes whatever is still queued at shutdown with a fresh context
// so in-flight submissions still get their report rebuilt.
func (w *StatsWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for {
		item, err := w.rdb.LPop(ctx, config.WorkerKey.RefreshStatsQueue).Result()
		if err != nil {
			return
		}
		w.refresh(ctx, item)
	}
}
