package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hearthform/docflow/task"
)

type taskModel struct {
	bun.BaseModel `bun:"table:tasks"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	OriginalFilename string    `bun:"original_filename,notnull"`

	Status task.Status `bun:"status,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Progress int    `bun:"progress,notnull,default:0"`
	Message  string `bun:"message,notnull,default:''"`

	FileHash string `bun:"file_hash,notnull,default:''"`

	ResultPath string `bun:"result_path,notnull,default:''"`
	S3URL      string `bun:"s3_url,notnull,default:''"`
	Downloaded bool   `bun:"downloaded,notnull,default:false"`

	WorkerID          string     `bun:"worker_id,nullzero"`
	ProcessingStarted *time.Time `bun:"processing_started,nullzero,default:null"`
}

func (m *taskModel) toTask() *task.Task {
	return &task.Task{
		ID:                m.ID.String(),
		OriginalFilename:  m.OriginalFilename,
		Status:            m.Status,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Progress:          m.Progress,
		Message:           m.Message,
		FileHash:          m.FileHash,
		ResultPath:        m.ResultPath,
		S3URL:             m.S3URL,
		Downloaded:        m.Downloaded,
		WorkerID:          m.WorkerID,
		ProcessingStarted: m.ProcessingStarted,
	}
}

func fromTask(t *task.Task) (*taskModel, error) {
	id := t.ID
	var parsed uuid.UUID
	var err error
	if id == "" {
		parsed = uuid.New()
	} else {
		parsed, err = uuid.Parse(id)
		if err != nil {
			return nil, err
		}
	}
	now := time.Now()
	return &taskModel{
		ID:               parsed,
		OriginalFilename: t.OriginalFilename,
		Status:           task.Queued,
		CreatedAt:        now,
		UpdatedAt:        now,
		FileHash:         t.FileHash,
	}, nil
}
