package controllers

import (
	"context"
	"time"

	"assetmanager/src/config"
	"assetmanager/src/scheduler"
	"assetmanager/src/schemas"
	"assetmanager/src/utils"

	"github.com/sirupsen/logrus"
)

const (
	ExchangeRateJob = "exchange-rates"
	RollupJob       = "rollup"

	// rollupLookbackDays re-rolls the days before today so sessions that
	// closed after the previous run, such as New York's, are finalized.
	rollupLookbackDays = 3
)

// LoadSchedules schedules the exchange rate refresh and the daily snapshot
// roll-up. An empty cron spec leaves the job unscheduled.
func (c *Controller) LoadSchedules(ctx context.Context, cfg *config.Config) error {
	if spec := cfg.Ingestion.ExchangeRateCron; spec != "" {
		if err := c.ScheduleJob(ctx, ExchangeRateJob, spec, c.refreshExchangeRates); err != nil {
			return err
		}
	}
	if spec := cfg.Ingestion.RollupCron; spec != "" {
		if err := c.ScheduleJob(ctx, RollupJob, spec, c.rollupRecent); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleJob replaces any job already scheduled under name.
func (c *Controller) ScheduleJob(_ context.Context, name, cronSpec string, taskFunc func(context.Context) error) error {
	c.SchedulerMutex.Lock()
	if existingTask, exists := c.Schedulers[name]; exists {
		existingTask.Cancel()
		delete(c.Schedulers, name)
	}
	c.SchedulerMutex.Unlock()

	newTask, err := scheduler.NewScheduledTask(name, cronSpec, taskFunc, c.Logger)
	if err != nil {
		return err
	}

	c.SchedulerMutex.Lock()
	c.Schedulers[name] = newTask
	c.SchedulerMutex.Unlock()

	c.Logger.WithFields(logrus.Fields{"job": name, "cron": cronSpec}).Info("Scheduled job")
	return nil
}

// StopSchedules cancels every scheduled job.
func (c *Controller) StopSchedules() {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	for name, task := range c.Schedulers {
		task.Cancel()
		delete(c.Schedulers, name)
	}
}

func (c *Controller) refreshExchangeRates(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	count, err := c.ExchangeRateService.Refresh(ctx)
	if err != nil {
		return err
	}
	c.Logger.WithField("rates", count).Info("Refreshed exchange rates")
	return nil
}

func (c *Controller) rollupRecent(ctx context.Context) error {
	now := time.Now()
	days, err := c.RollupService.Backfill(ctx, now.AddDate(0, 0, -rollupLookbackDays), now)
	if err != nil {
		return err
	}
	c.Logger.WithField("days", days).Info("Rolled up recent snapshots")
	return nil
}

// RefreshExchangeRates runs the exchange rate job once, outside its schedule.
func (c *Controller) RefreshExchangeRates(ctx context.Context) (*schemas.RefreshResponse, error) {
	count, err := c.ExchangeRateService.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &schemas.RefreshResponse{Rates: count}, nil
}

// Rollup rebuilds daily, weekly and monthly snapshots for every day in
// [startDate, endDate].
func (c *Controller) Rollup(ctx context.Context, startDate, endDate time.Time) (*schemas.RollupResponse, error) {
	if endDate.Before(startDate) {
		return nil, utils.BadRequest("endDate must not be before startDate")
	}
	count, err := c.RollupService.Backfill(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return &schemas.RollupResponse{
		StartDate: schemas.NewDate(startDate),
		EndDate:   schemas.NewDate(endDate),
		Days:      count,
	}, nil
}
