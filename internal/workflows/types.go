package workflows

import "time"

type ProcessDocumentInput struct {
	JobID       string `json:"job_id"`
	DocumentID  string `json:"document_id"`
	FilePath    string `json:"file_path"`
	DetailLevel string `json:"detail_level"`
}

// JobStatus is the externally visible record for one processing job. It is
// owned by the workflow and read through the status query handler, so
// readers always observe a consistent snapshot.
type JobStatus struct {
	JobID        string    `json:"job_id"`
	DocumentID   string    `json:"document_id"`
	Status       string    `json:"status"`
	Progress     int       `json:"progress"`
	Message      string    `json:"message"`
	StudyGuideID string    `json:"study_guide_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Progress markers for each completed stage.
const (
	ProgressCreated   = 0
	ProgressParsing   = 5
	ProgressParsed    = 25
	ProgressAnalyzed  = 50
	ProgressGenerated = 80
	ProgressPersisted = 100
)
