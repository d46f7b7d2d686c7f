package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/club100/internal/shared"
)

// JobStatus is the lifecycle state of a [RenderJob].
type JobStatus string

const (
	JobSubmitted JobStatus = "submitted"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// RenderJob records one timeline submitted to the audio worker.
type RenderJob struct {
	id          string
	jobID       string
	language    string
	status      JobStatus
	downloadURL string
	output      string
	itemCount   int
	errMsg      string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRenderJob creates a submitted job for a timeline of itemCount items.
func NewRenderJob(language string, itemCount int) *RenderJob {
	now := time.Now()
	return &RenderJob{
		language:  language,
		status:    JobSubmitted,
		itemCount: itemCount,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreRenderJob rebuilds a job from stored columns.
func RestoreRenderJob(id, jobID, language string, status JobStatus, downloadURL, output string, itemCount int, errMsg string, createdAt, updatedAt time.Time) *RenderJob {
	return &RenderJob{
		id:          id,
		jobID:       jobID,
		language:    language,
		status:      status,
		downloadURL: downloadURL,
		output:      output,
		itemCount:   itemCount,
		errMsg:      errMsg,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (j *RenderJob) ID() string           { return j.id }
func (j *RenderJob) CreatedAt() time.Time { return j.createdAt }
func (j *RenderJob) UpdatedAt() time.Time { return j.updatedAt }
func (j *RenderJob) JobID() string        { return j.jobID }
func (j *RenderJob) Language() string     { return j.language }
func (j *RenderJob) Status() JobStatus    { return j.status }
func (j *RenderJob) DownloadURL() string  { return j.downloadURL }
func (j *RenderJob) Output() string       { return j.output }
func (j *RenderJob) ItemCount() int       { return j.itemCount }
func (j *RenderJob) ErrorMessage() string { return j.errMsg }

func (j *RenderJob) SetID(id string)            { j.id = id }
func (j *RenderJob) SetUpdatedAt(t time.Time)   { j.updatedAt = t }
func (j *RenderJob) SetStatus(status JobStatus) { j.status = status }

// Complete records the worker's job id and the resulting download reference.
func (j *RenderJob) Complete(jobID, output, downloadURL string) {
	j.jobID = jobID
	j.output = output
	j.downloadURL = downloadURL
	j.status = JobCompleted
	j.updatedAt = time.Now()
}

// Fail marks the job failed with the given cause.
func (j *RenderJob) Fail(err error) {
	j.status = JobFailed
	if err != nil {
		j.errMsg = err.Error()
	}
	j.updatedAt = time.Now()
}

// Validate checks required fields.
func (j *RenderJob) Validate() error {
	if j.language == "" {
		return fmt.Errorf("%w: language is required", shared.ErrInvalidInput)
	}
	switch j.status {
	case JobSubmitted, JobFailed:
	case JobCompleted:
		if j.jobID == "" {
			return fmt.Errorf("%w: completed job requires worker job id", shared.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown job status %q", shared.ErrInvalidInput, j.status)
	}
	if j.itemCount < 0 {
		return fmt.Errorf("%w: item count must be non-negative", shared.ErrInvalidInput)
	}
	return nil
}
