// Package achievement holds the submitted-achievement record and its
// moderation lifecycle: pending at creation, then approved or rejected by a
// moderating role. Both outcomes are terminal; there is no re-review.
package achievement

import (
	"errors"
	"time"

	"ustazhub.kz/internal/scoring"
)

// Status of a record in the moderation pipeline.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Record is one submitted, scored and status-tracked accomplishment.
// Points are computed once at submission from the classification and never
// recomputed; treat the classification as write-once.
type Record struct {
	ID             int64                  `json:"id"`
	OwnerID        string                 `json:"owner_id"`
	Classification scoring.Classification `json:"classification"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description,omitempty"`
	StudentName    string                 `json:"student_name,omitempty"`
	FileLocator    string                 `json:"file_locator,omitempty"`
	Points         int                    `json:"points"`
	Status         Status                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
}

var (
	ErrNotFound        = errors.New("achievement: record not found")
	ErrPayloadTooLarge = errors.New("achievement: uploaded file exceeds the size limit")
	ErrInvalidInput    = errors.New("achievement: invalid input")
)
