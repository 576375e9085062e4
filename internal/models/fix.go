package models

import "time"

// Fix job states. QUEUED and RUNNING are non-terminal; the poll loop keeps
// going until it sees COMPLETED or FAILED. Anything else reported by the AI
// backend is treated as still in flight.
const (
	FixQueued    = "QUEUED"
	FixRunning   = "RUNNING"
	FixCompleted = "COMPLETED"
	FixFailed    = "FAILED"
)

// TerminalFixStatus reports whether a status ends the poll loop.
func TerminalFixStatus(status string) bool {
	return status == FixCompleted || status == FixFailed
}

// IssueFix is an asynchronous auto-fix job for a GitHub issue.
type IssueFix struct {
	ID          string    `bson:"_id" json:"id"`
	RepoID      string    `bson:"repo_full_name" json:"repo"`
	IssueNumber int       `bson:"issue_number" json:"issue_number"`
	IssueTitle  string    `bson:"issue_title" json:"issue_title"`
	BackendID   string    `bson:"backend_id" json:"-"` // job id at the AI backend
	Status      string    `bson:"status" json:"status"`
	Patch       string    `bson:"patch,omitempty" json:"patch,omitempty"`
	Explanation string    `bson:"explanation,omitempty" json:"explanation,omitempty"`
	Error       string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
