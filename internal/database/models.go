package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Resume struct {
	ID               uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	StorageUrl       string
	UploadStatus     string
	CreatedAt        time.Time
	RunID            uuid.UUID
}

type Run struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UserID      uuid.UUID
	Mode        string
	Status      string
	TargetUrl   string
	SearchQuery string
	Region      string
}

type RunResult struct {
	ID        uuid.UUID
	RunID     uuid.UUID
	Result    json.RawMessage
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
