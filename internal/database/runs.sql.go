package database

import (
	"context"

	"github.com/google/uuid"
)

const updateRunStatus = `-- name: UpdateRunStatus :exec
UPDATE runs 
SET status=$1
WHERE id=$2
`

type UpdateRunStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateRunStatus(ctx context.Context, arg UpdateRunStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateRunStatus, arg.Status, arg.ID)
	return err
}
