package database

import (
	"context"

	"github.com/google/uuid"
)

const getRunResume = `-- name: GetRunResume :one
SELECT id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, created_at, run_id FROM resumes WHERE run_id=$1
ORDER BY created_at DESC
LIMIT 1
`

func (q *Queries) GetRunResume(ctx context.Context, runID uuid.UUID) (Resume, error) {
	row := q.db.QueryRowContext(ctx, getRunResume, runID)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.StorageProvider,
		&i.ObjectKey,
		&i.StorageUrl,
		&i.UploadStatus,
		&i.CreatedAt,
		&i.RunID,
	)
	return i, err
}
