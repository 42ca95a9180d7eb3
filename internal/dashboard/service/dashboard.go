package service

import (
	"context"
	"time"

	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"

	"golang.org/x/sync/errgroup"
)

const recentAppointmentsLimit = 10

type ActiveCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type AppointmentCounter interface {
	CountAll(ctx context.Context) (int64, error)
	CountActiveOn(ctx context.Context, date time.Time) (int64, error)
}

type RecentAppointments interface {
	Recent(ctx context.Context, limit int64) ([]*model.AppointmentView, error)
}

type Stats struct {
	TotalPets          int64
	TotalOwners        int64
	TotalAppointments  int64
	TodayAppointments  int64
	RecentAppointments []*model.AppointmentView
}

type DashboardService interface {
	Stats(ctx context.Context) (*Stats, error)
}

type dashboardService struct {
	pets         ActiveCounter
	owners       ActiveCounter
	appointments AppointmentCounter
	recent       RecentAppointments
	cfg          *config.Config
	now          func() time.Time
}

func NewDashboardService(pets, owners ActiveCounter, appointments AppointmentCounter, recent RecentAppointments, cfg *config.Config) DashboardService {
	return &dashboardService{
		pets:         pets,
		owners:       owners,
		appointments: appointments,
		recent:       recent,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Stats runs the counts and the recent list concurrently.
func (s *dashboardService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	today := s.now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalPets, err = s.pets.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOwners, err = s.owners.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalAppointments, err = s.appointments.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TodayAppointments, err = s.appointments.CountActiveOn(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentAppointments, err = s.recent.Recent(gctx, recentAppointmentsLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to load dashboard", "error", err)
		return nil, apperrors.Internal("Error loading dashboard data", err)
	}
	return stats, nil
}
