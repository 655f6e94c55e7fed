package nightaudit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"resort/internal/domain"
)

// NextRun returns the next wall-clock occurrence of hour:minute strictly after
// now, in now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// Scheduler fires Run once a day at a fixed local time. The job runs in
// singleton mode, so a slow sweep delays the next tick instead of overlapping it.
type Scheduler struct {
	service *Service
	sched   gocron.Scheduler
	job     gocron.Job
	hour    int
	minute  int
	loc     *time.Location
	timeout time.Duration
	log     *zap.Logger
}

func NewScheduler(service *Service, hour, minute int, loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s := &Scheduler{
		service: service,
		sched:   sched,
		hour:    hour,
		minute:  minute,
		loc:     loc,
		timeout: 10 * time.Minute,
		log:     log,
	}

	s.job, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(s.tick),
		gocron.WithName("night-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule night audit: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.log.Info("night audit scheduled",
		zap.Time("next_run", NextRun(time.Now().In(s.loc), s.hour, s.minute)),
		zap.String("timezone", s.loc.String()),
	)
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}

// NextRun reports when gocron will fire the job next.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	today := domain.DateOf(time.Now().In(s.loc))
	if _, err := s.service.Run(ctx, today); err != nil {
		s.log.Error("scheduled night audit failed", zap.Error(err))
	}
}
