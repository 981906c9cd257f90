package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"domain-locker/internal/conf"
	"domain-locker/internal/domain"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	JobRefresh   = "refresh"
	JobReminders = "reminders"
)

// CronService runs the domain refresh and the expiry reminders on their schedules
// and lets the API trigger them on demand. A job never overlaps with itself.
type CronService struct {
	Cron      *cron.Cron
	Tracker   *TrackerService
	Reminders *ReminderService
	Config    conf.CronConfig
	EntryIDs  map[string]cron.EntryID

	refreshing atomic.Bool
	reminding  atomic.Bool
	manual     sync.WaitGroup
}

func NewCronService(cfg conf.CronConfig, tracker *TrackerService, reminders *ReminderService) *CronService {
	return &CronService{
		Cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		Tracker:   tracker,
		Reminders: reminders,
		Config:    cfg,
		EntryIDs:  make(map[string]cron.EntryID),
	}
}

// Start registers both jobs and starts the scheduler.
func (s *CronService) Start() error {
	if !s.Config.Enabled {
		logrus.Info("[Scheduler] Disabled by config")
		return nil
	}

	if err := s.registerJob(JobRefresh, s.Config.RefreshSchedule, func() {
		s.RunRefresh(context.Background())
	}); err != nil {
		return err
	}
	if err := s.registerJob(JobReminders, s.Config.ReminderSchedule, func() {
		s.RunReminders(context.Background())
	}); err != nil {
		return err
	}

	s.Cron.Start()
	return nil
}

// Stop waits for scheduled and manually triggered jobs to return, up to ctx's deadline.
func (s *CronService) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		<-s.Cron.Stop().Done()
		s.manual.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("[Scheduler] Stopped")
	case <-ctx.Done():
		logrus.Warn("[Scheduler] Jobs still running at shutdown")
	}
}

func (s *CronService) registerJob(name, schedule string, cmd func()) error {
	id, err := s.Cron.AddFunc(schedule, cmd)
	if err != nil {
		return fmt.Errorf("scheduling %s job %q: %w", name, schedule, err)
	}
	s.EntryIDs[name] = id
	logrus.Infof("[Scheduler] Job [%s] scheduled: %s", name, schedule)
	return nil
}

// Trigger starts the named job in the background. It returns false when the job is
// already running.
func (s *CronService) Trigger(name string) (bool, error) {
	var running *atomic.Bool
	var run func(context.Context)
	switch name {
	case JobRefresh:
		running, run = &s.refreshing, s.refresh
	case JobReminders:
		running, run = &s.reminding, s.remind
	default:
		return false, domain.NewValidationError("unknown job %q", name)
	}
	if !running.CompareAndSwap(false, true) {
		return false, nil
	}

	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		defer running.Store(false)
		run(context.Background())
	}()
	return true, nil
}

func (s *CronService) RunRefresh(ctx context.Context) {
	if !s.refreshing.CompareAndSwap(false, true) {
		logrus.Warn("[Scheduler] Refresh already running, skipping")
		return
	}
	defer s.refreshing.Store(false)
	s.refresh(ctx)
}

func (s *CronService) RunReminders(ctx context.Context) {
	if !s.reminding.CompareAndSwap(false, true) {
		logrus.Warn("[Scheduler] Reminders already running, skipping")
		return
	}
	defer s.reminding.Store(false)
	s.remind(ctx)
}

// refresh and remind expect the caller to hold the job's running flag.
func (s *CronService) refresh(ctx context.Context) {
	logrus.Info("[Scheduler] Refresh started")
	start := time.Now()
	if _, err := s.Tracker.RefreshAll(ctx); err != nil {
		logrus.Errorf("[Scheduler] Refresh failed: %v", err)
		return
	}
	logrus.Infof("[Scheduler] Refresh done in %s", time.Since(start))
}

func (s *CronService) remind(ctx context.Context) {
	if _, err := s.Reminders.Run(ctx); err != nil {
		logrus.Errorf("[Scheduler] Reminders failed: %v", err)
	}
}
