package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// PostgresClient implements both the restaurant repository and the job
// store on one connection pool.
type PostgresClient struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresClient(databaseURL string) (*PostgresClient, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresClient{
		db:     db,
		logger: slog.Default().With("component", "postgres-client"),
	}, nil
}

func (p *PostgresClient) Close() error {
	return p.db.Close()
}

// EnsureSchema creates the tables this worker writes to.
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS episodes (
			video_id         TEXT PRIMARY KEY,
			video_url        TEXT NOT NULL DEFAULT '',
			title            TEXT NOT NULL DEFAULT '',
			language         TEXT NOT NULL DEFAULT '',
			transcript_chars INT  NOT NULL DEFAULT 0,
			chunk_count      INT  NOT NULL DEFAULT 0,
			processed_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS restaurants (
			id           BIGSERIAL PRIMARY KEY,
			video_id     TEXT NOT NULL REFERENCES episodes(video_id) ON DELETE CASCADE,
			name         TEXT NOT NULL,
			name_english TEXT NOT NULL DEFAULT '',
			record       JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (video_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS batch_jobs (
			job_id       TEXT PRIMARY KEY,
			channel_id   TEXT NOT NULL,
			status       TEXT NOT NULL,
			snapshot     JSONB NOT NULL,
			created_at   TEXT NOT NULL,
			completed_at TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// RestaurantRepositoryPort
// ─────────────────────────────────────────────────────────────────────────────

// SaveEpisode upserts the episode row and its consolidated records in one
// transaction. Re-processing a video replaces its previous records.
func (p *PostgresClient) SaveEpisode(ctx context.Context, episode *models.EpisodeInfo, records []models.Restaurant) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO episodes (video_id, video_url, title, language, transcript_chars, chunk_count, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (video_id) DO UPDATE SET
			video_url = EXCLUDED.video_url,
			title = EXCLUDED.title,
			language = EXCLUDED.language,
			transcript_chars = EXCLUDED.transcript_chars,
			chunk_count = EXCLUDED.chunk_count,
			processed_at = EXCLUDED.processed_at`,
		episode.VideoID, episode.VideoURL, episode.Title, episode.Language,
		episode.TranscriptChars, episode.ChunkCount, episode.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert episode %s: %w", episode.VideoID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM restaurants WHERE video_id = $1`, episode.VideoID); err != nil {
		return fmt.Errorf("failed to clear previous records: %w", err)
	}

	for i := range records {
		payload, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("failed to marshal record %q: %w", records[i].Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO restaurants (video_id, name, name_english, record)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (video_id, name) DO UPDATE SET
				name_english = EXCLUDED.name_english,
				record = EXCLUDED.record`,
			episode.VideoID, records[i].Name, records[i].NameEnglish, payload,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %q: %w", records[i].Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit episode %s: %w", episode.VideoID, err)
	}

	p.logger.InfoContext(ctx, "episode saved",
		"video_id", episode.VideoID,
		"records", len(records),
	)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// JobStorePort
// ─────────────────────────────────────────────────────────────────────────────

// SaveJob upserts the full job snapshot keyed by job id. Timestamps are
// stored in sortable RFC 3339 text alongside the JSON snapshot.
func (p *PostgresClient) SaveJob(ctx context.Context, job *models.BatchJob) error {
	snapshot, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.JobID, err)
	}

	completedAt := ""
	if job.CompletedAt != nil {
		completedAt = job.CompletedAt.UTC().Format(time.RFC3339)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO batch_jobs (job_id, channel_id, status, snapshot, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			snapshot = EXCLUDED.snapshot,
			completed_at = EXCLUDED.completed_at`,
		job.JobID, job.ChannelID, string(job.Status), snapshot,
		job.CreatedAt.UTC().Format(time.RFC3339), completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.JobID, err)
	}
	return nil
}

// LoadJobs returns every persisted job snapshot, oldest first.
func (p *PostgresClient) LoadJobs(ctx context.Context) ([]*models.BatchJob, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT snapshot FROM batch_jobs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.BatchJob
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		var job models.BatchJob
		if err := json.Unmarshal(payload, &job); err != nil {
			p.logger.Warn("skipping unreadable job snapshot", "error", err)
			continue
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

var (
	_ ports.RestaurantRepositoryPort = (*PostgresClient)(nil)
	_ ports.JobStorePort             = (*PostgresClient)(nil)
)
