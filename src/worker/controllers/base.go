package controllers

import (
	"context"
	"sync"

	"assetmanager/src/scheduler"
	"assetmanager/src/schemas"
	"assetmanager/src/services"

	"github.com/sirupsen/logrus"
)

// Collector is an ingestion loop reporting on its last cycle.
type Collector interface {
	Name() string
	Run(ctx context.Context) error
	LastReport() *schemas.CycleReport
}

// Worker is any other long-running loop, such as the stream listener.
type Worker func(ctx context.Context) error

type Controller struct {
	Collectors          []Collector
	Workers             map[string]Worker
	ExchangeRateService services.ExchangeRateServiceI
	RollupService       services.RollupServiceI
	Logger              *logrus.Logger

	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask
}

func NewController(collectors []Collector, workers map[string]Worker, exchangeRateService services.ExchangeRateServiceI, rollupService services.RollupServiceI, logger *logrus.Logger) *Controller {
	if workers == nil {
		workers = map[string]Worker{}
	}
	return &Controller{
		Collectors:          collectors,
		Workers:             workers,
		ExchangeRateService: exchangeRateService,
		RollupService:       rollupService,
		Logger:              logger,
		Schedulers:          map[string]*scheduler.ScheduledTask{},
	}
}

func (c *Controller) GetSchedulers() map[string]*scheduler.ScheduledTask {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	schedulers := make(map[string]*scheduler.ScheduledTask, len(c.Schedulers))
	for name, task := range c.Schedulers {
		schedulers[name] = task
	}
	return schedulers
}
