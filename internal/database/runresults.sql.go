package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createOrUpdateRunResult = `-- name: CreateOrUpdateRunResult :exec
INSERT INTO run_results (
result, error, run_id)
VALUES ( $1, $2, $3)
ON CONFLICT (run_id)
DO UPDATE SET
    result = EXCLUDED.result,
    error = EXCLUDED.error,
    updated_at = CURRENT_TIMESTAMP
`

type CreateOrUpdateRunResultParams struct {
	Result json.RawMessage
	Error  string
	RunID  uuid.UUID
}

func (q *Queries) CreateOrUpdateRunResult(ctx context.Context, arg CreateOrUpdateRunResultParams) error {
	_, err := q.db.ExecContext(ctx, createOrUpdateRunResult, arg.Result, arg.Error, arg.RunID)
	return err
}
