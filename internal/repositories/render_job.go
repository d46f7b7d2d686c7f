package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
)

// RenderJobRepository implements models.Repository[*models.RenderJob].
type RenderJobRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.RenderJob] = (*RenderJobRepository)(nil)

// NewRenderJobRepository creates a new RenderJobRepository with the given database connection
func NewRenderJobRepository(db *sql.DB) *RenderJobRepository {
	return &RenderJobRepository{db: db}
}

const renderJobColumns = "id, job_id, language, status, download_url, output, item_count, error, created_at, updated_at"

// Create inserts a new [models.RenderJob] with a generated ID
func (r *RenderJobRepository) Create(job *models.RenderJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	job.SetID(id)

	_, err := r.db.Exec(`
		INSERT INTO render_jobs (`+renderJobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		job.JobID(),
		job.Language(),
		string(job.Status()),
		job.DownloadURL(),
		job.Output(),
		job.ItemCount(),
		job.ErrorMessage(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert render job: %w", err)
	}

	return nil
}

// Get retrieves a render job by ID
func (r *RenderJobRepository) Get(id string) (*models.RenderJob, error) {
	row := r.db.QueryRow("SELECT "+renderJobColumns+" FROM render_jobs WHERE id = ?", id)

	job, err := scanRenderJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}
	return job, err
}

// Update writes the mutable fields of job
func (r *RenderJobRepository) Update(job *models.RenderJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	result, err := r.db.Exec(`
		UPDATE render_jobs
		SET job_id = ?, status = ?, download_url = ?, output = ?, error = ?, updated_at = ?
		WHERE id = ?
	`,
		job.JobID(),
		string(job.Status()),
		job.DownloadURL(),
		job.Output(),
		job.ErrorMessage(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update render job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, job.ID())
	}

	return nil
}

// Delete removes a render job by ID
func (r *RenderJobRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM render_jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete render job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}

	return nil
}

// List retrieves render jobs newest first.
//
// Supported criteria: "status" (string), "language" (string), "limit" (int).
func (r *RenderJobRepository) List(criteria map[string]any) ([]*models.RenderJob, error) {
	query := "SELECT " + renderJobColumns + " FROM render_jobs WHERE 1 = 1"
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if language, ok := criteria["language"].(string); ok && language != "" {
		query += " AND language = ?"
		args = append(args, language)
	}

	query += " ORDER BY created_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query render jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.RenderJob
	for rows.Next() {
		job, err := scanRenderJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRenderJob(s scanner) (*models.RenderJob, error) {
	var (
		id          string
		jobID       string
		language    string
		status      string
		downloadURL string
		output      string
		itemCount   int
		errMsg      string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := s.Scan(&id, &jobID, &language, &status, &downloadURL, &output, &itemCount, &errMsg, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan render job: %w", err)
	}

	return models.RestoreRenderJob(id, jobID, language, models.JobStatus(status), downloadURL, output, itemCount, errMsg, createdAt, updatedAt), nil
}
