package controllers

import (
	"context"
	"sort"

	"assetmanager/src/schemas"

	"golang.org/x/sync/errgroup"
)

// Start runs every collector and worker until ctx is done. A loop that
// returns an error cancels the others.
func (c *Controller) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, collector := range c.Collectors {
		g.Go(func() error {
			c.Logger.WithField("source", collector.Name()).Info("Starting collector")
			return collector.Run(ctx)
		})
	}
	for name, worker := range c.Workers {
		g.Go(func() error {
			c.Logger.WithField("worker", name).Info("Starting worker")
			return worker(ctx)
		})
	}
	return g.Wait()
}

// IngestionStatus reports the last cycle of every collector and the next
// run of every scheduled job.
func (c *Controller) IngestionStatus(_ context.Context) *schemas.IngestionStatusResponse {
	status := &schemas.IngestionStatusResponse{
		Collectors: make([]schemas.CollectorStatus, 0, len(c.Collectors)),
		Schedules:  []schemas.ScheduleStatus{},
	}
	for _, collector := range c.Collectors {
		status.Collectors = append(status.Collectors, schemas.CollectorStatus{
			Source:     collector.Name(),
			LastReport: collector.LastReport(),
		})
	}
	for name, task := range c.GetSchedulers() {
		status.Schedules = append(status.Schedules, schemas.ScheduleStatus{Name: name, NextRun: task.Next()})
	}
	sort.Slice(status.Schedules, func(i, j int) bool {
		return status.Schedules[i].Name < status.Schedules[j].Name
	})
	return status
}
