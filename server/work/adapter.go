package work

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/cron"
	"github.com/recruitedge/recruitedge/server/models"
)

const MAX_CONCURRENCY = 1

// WorkerPoolAdapter ties the DB-backed worker pool, the requeuers and the
// cron scheduler behind one start/stop surface.
type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	pool          WorkerPool
	requeuers     []*requeuer
}

func NewWorkerAdapter(timeZoneArg string, watchScheduledJobs bool) *WorkerPoolAdapter {
	adapter := WorkerPoolAdapter{
		cronScheduler: cron.NewCronScheduler(timeZoneArg),
		pool:          *NewWorkerPool(MAX_CONCURRENCY),
	}

	queues := []string{models.IN_PROGRESS_JOB}
	if watchScheduledJobs {
		queues = append(queues, models.SCHEDULED_JOB)
	}

	for _, queue := range queues {
		requeuer, err := newRequeuer(queue)
		if err != nil {
			logg.Panic(err)
		}
		adapter.requeuers = append(adapter.requeuers, requeuer)
	}

	return &adapter
}

// Start starts the cron scheduler, requeuers & worker pool
func (adapter *WorkerPoolAdapter) Start() error {
	logg.Info("Starting cron scheduler & worker pool")
	adapter.cronScheduler.StartAsync()
	for _, requeuer := range adapter.requeuers {
		requeuer.start()
	}
	adapter.pool.start()

	return nil
}

// Stop stops the cron scheduler, requeuers & worker pool
func (adapter *WorkerPoolAdapter) Stop() error {
	logg.Info("Stopping cron scheduler & worker pool")
	adapter.cronScheduler.Stop()
	for _, requeuer := range adapter.requeuers {
		requeuer.stop()
	}
	adapter.pool.stop()

	return nil
}

// Register binds a name to a handler.
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	return adapter.pool.registerHandler(name, handler)
}

// Perform sends a new job to the queue, to be executed as soon as a worker is available
func (adapter *WorkerPoolAdapter) Perform(job JobParams) error {
	logg.Infof("Enqueuing job: %v", job.Name)

	err := adapter.pool.enqueue(job)
	if errors.Is(err, models.ErrDuplicateJob) {
		logg.Warnf("Duplicate job already in queue for: %v", job.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("error enqueuing job: %v, %v", job.Name, err)
	}

	return nil
}

// PerformIn schedules a job to be enqueued 'secondsInFuture' seconds from now
func (adapter *WorkerPoolAdapter) PerformIn(secondsInFuture int64, job JobParams) error {
	argsAsJSON, err := jobArgsAsJSON(job)
	if err != nil {
		return err
	}

	return models.CreateScheduledJob(
		job.Name, job.Handler, argsAsJSON, time.Now().Add(time.Duration(secondsInFuture)*time.Second))
}

// PeriodicallyPerform adds a job to the queue (to be executed)
// periodically, based on the 'cronExpression' expression provided
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, job JobParams) error {
	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(job.Name).
		Do(
			func(job JobParams) {
				if err := adapter.Perform(job); err != nil {
					logg.Error(err)
				}
			},
			job,
		)
	return err
}

func (adapter *WorkerPoolAdapter) RemovePeriodicJob(jobName string) {
	adapter.cronScheduler.RemoveByTag(jobName)
}

func jobArgsAsJSON(job JobParams) (string, error) {
	argsAsJSON, err := json.Marshal(job.Args)
	if err != nil {
		return "", err
	}
	return string(argsAsJSON), nil
}
