package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name"`
	Handler     string     `json:"handler"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	EnqueuedAt  *time.Time `json:"enqueued_at"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status"`
}

func (job *Job) MarkAsClaimed() (bool, error) {
	inProgressStatus, err := FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", job.ID, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(job).Updates(data).Error
}

// CreateUniqueJobByName enqueues a job unless one with the same name is
// already enqueued or in-progress, in which case ErrDuplicateJob is returned.
func CreateUniqueJobByName(name string, handler string, args string) error {
	queuedStatusIDs, err := jobStatusIDs(ENQUEUED_JOB, IN_PROGRESS_JOB)
	if err != nil {
		return err
	}

	result := db.Where("name = ? AND job_status_id IN ?", name, queuedStatusIDs).First(&Job{})
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	if result.RowsAffected > 0 {
		return ErrDuplicateJob
	}

	return CreateJob(name, handler, args)
}

func CreateJob(name string, handler string, args string) error {
	enqueuedStatus, err := FindJobStatus(ENQUEUED_JOB)
	if err != nil {
		return err
	}

	now := time.Now()
	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		EnqueuedAt:  &now,
		JobStatusID: enqueuedStatus.ID,
	}).Error
}

// CreateScheduledJob records a job to be moved onto the queue at 'enqueueAt'.
func CreateScheduledJob(name string, handler string, args string, enqueueAt time.Time) error {
	scheduledStatus, err := FindJobStatus(SCHEDULED_JOB)
	if err != nil {
		return err
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		EnqueuedAt:  &enqueueAt,
		JobStatusID: scheduledStatus.ID,
	}).Error
}

// LastJob returns the oldest job with the given status & claim state.
func LastJob(status string, claimed bool) (*Job, error) {
	job := Job{}

	err := db.Joins(
		"INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?", status).
		Where("claimed = ?", claimed).
		Order("jobs.id ASC").
		First(&job).Error

	if err != nil {
		return nil, err
	}

	return &job, nil
}

// LastJobLastUpdated returns the oldest job with the given status not
// updated within the last 'minutes' minutes.
func LastJobLastUpdated(minutes int, status string) (*Job, error) {
	job := Job{}
	cutOff := time.Now().Add(-time.Duration(minutes) * time.Minute)

	err := db.Joins(
		"INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?", status).
		Where("jobs.updated_at < ?", cutOff).
		Order("jobs.id ASC").
		First(&job).Error

	if err != nil {
		return nil, err
	}

	return &job, nil
}

// FirstScheduledJobToBeQueued returns the first scheduled job whose
// enqueue time has elapsed.
func FirstScheduledJobToBeQueued() (*Job, error) {
	job := Job{}

	err := db.Preload("JobStatus").Joins(
		"INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?", SCHEDULED_JOB).
		Where("jobs.enqueued_at <= ?", time.Now()).
		Order("jobs.id ASC").
		First(&job).Error

	if err != nil {
		return nil, err
	}

	return &job, nil
}

func JobStats() (*JobsStats, error) {
	stats := JobsStats{}

	counts := []struct {
		Name  string
		Count int64
	}{}

	err := db.Model(&Job{}).
		Select("job_statuses.name AS name, COUNT(jobs.id) AS count").
		Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id").
		Group("job_statuses.name").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	for _, c := range counts {
		switch c.Name {
		case ENQUEUED_JOB:
			stats.EnqueuedJobCount = c.Count
		case IN_PROGRESS_JOB:
			stats.InProgressJobCount = c.Count
		case SUCCESSFUL_JOB:
			stats.SuccessfulJobCount = c.Count
		case DEAD_JOB:
			stats.DeadJobCount = c.Count
		}
	}

	return &stats, nil
}
