package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ScheduledTask runs a job on a cron schedule until cancelled. A run that is
// still in progress when the next one fires causes that tick to be skipped.
type ScheduledTask struct {
	Name   string
	cronID cron.EntryID
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduledTask(name, cronSpec string, taskFunc func(context.Context) error, logger *logrus.Logger) (*ScheduledTask, error) {
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{logger}),
		cron.Recover(cronLogger{logger}),
	))
	task := &ScheduledTask{
		Name:   name,
		cron:   c,
		ctx:    ctx,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		started := time.Now()
		if err := taskFunc(ctx); err != nil {
			logger.WithError(err).WithField("task", name).Error("Scheduled task failed")
			return
		}
		logger.WithFields(logrus.Fields{"task": name, "duration": time.Since(started).String()}).Info("Scheduled task finished")
	})
	if err != nil {
		cancel()
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

// Next is the time of the upcoming run.
func (s *ScheduledTask) Next() time.Time {
	return s.cron.Entry(s.cronID).Next
}

// Cancel stops future runs and signals a running one through its context.
func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	s.cancel()
	s.cron.Stop()
}

type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).WithFields(fields(keysAndValues)).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			f[key] = keysAndValues[i+1]
		}
	}
	return f
}
