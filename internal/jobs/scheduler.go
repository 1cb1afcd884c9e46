package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
)

// Scheduler runs named background tasks on cron schedules.
type Scheduler struct {
	cron      *cron.Cron
	log       *logger.Logger
	tasks     map[string]string
	isRunning bool
}

// NewScheduler creates an empty Scheduler.
func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		log:   log,
		tasks: make(map[string]string),
	}
}

// Add registers fn under spec. Standard five-field expressions and
// descriptors such as "@every 15m" are accepted.
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("invalid cron spec %q for %s: %w", spec, name, err)
	}
	s.tasks[name] = spec
	return nil
}

// Start starts every registered task.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.isRunning = true
	for name, spec := range s.tasks {
		s.log.Info("Task scheduled", map[string]interface{}{
			"task": name,
			"cron": spec,
		})
	}
}

// Stop stops the schedule. Running tasks are not waited for.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.log.Info("Scheduler stopped", nil)
	}
}
