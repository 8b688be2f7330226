package maintenance

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	oneirobadger "github.com/oneiro-app/oneiro/internal/storage/badger"
)

// Scheduler runs periodic store maintenance, currently Badger value-log
// garbage collection.
type Scheduler struct {
	db     *oneirobadger.BadgerDB
	cron   *cron.Cron
	logger arbor.ILogger
}

// NewScheduler creates a maintenance scheduler
func NewScheduler(db *oneirobadger.BadgerDB, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

// Start begins scheduled maintenance
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		// Default: every 6 hours
		schedule = "0 0 */6 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runGC()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Store maintenance scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Store maintenance scheduler stopped")
}

func (s *Scheduler) runGC() {
	s.logger.Debug().Msg("Starting value log garbage collection")

	// Badger reclaims one log file per call; loop until nothing is left.
	reclaimed := 0
	for {
		err := s.db.RunValueLogGC(0.5)
		if err == badger.ErrNoRewrite {
			break
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Value log garbage collection failed")
			return
		}
		reclaimed++
	}

	s.logger.Info().
		Int("files_reclaimed", reclaimed).
		Msg("Value log garbage collection completed")
}
