package models

import "time"

// Repository processing states. A repo is connected in StatusPending, moves
// to StatusProcessing once the AI backend picks it up, and lands in
// StatusReady or StatusFailed.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusReady      = "READY"
	StatusFailed     = "FAILED"
)

// Repository is a GitHub repository connected to the workspace, together
// with its processing state and summary produced by the AI backend.
type Repository struct {
	ID          string    `bson:"_id" json:"id"` // repository full name (e.g. "facebook/react")
	Owner       string    `bson:"owner" json:"owner"`
	Name        string    `bson:"name" json:"name"`
	FullName    string    `bson:"full_name" json:"full_name"`
	Description string    `bson:"description" json:"description"`
	Private     bool      `bson:"private" json:"private"`
	Stars       int       `bson:"stars" json:"stars"`
	Language    string    `bson:"language" json:"language"`
	Branch      string    `bson:"branch" json:"branch"` // default branch at connect time
	FileCount   int       `bson:"file_count" json:"file_count"`
	Status      string    `bson:"status" json:"status"`
	Summary     string    `bson:"summary,omitempty" json:"summary,omitempty"`
	ConnectedAt time.Time `bson:"connected_at" json:"connected_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// CodeChunk is an embedded slice of repository content stored for retrieval.
type CodeChunk struct {
	ID     string    `bson:"_id" json:"id"`
	RepoID string    `bson:"repo_id" json:"repo_id"`
	File   string    `bson:"file" json:"file"`
	Text   string    `bson:"text" json:"text"`
	Vector []float32 `bson:"vector" json:"-"` // excluded from JSON, heavy
	Score  float64   `bson:"score,omitempty" json:"score,omitempty"`
}

// GitHubRepo captures the fields we read off GitHub's repository object
// before a repo is connected.
type GitHubRepo struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	Stars         int    `json:"stars"`
	Language      string `json:"language"`
	DefaultBranch string `json:"default_branch"`
}

// Issue captures the minimal fields we care about from GitHub's REST API.
type Issue struct {
	ID        int64  `json:"id"         bson:"id"`
	Number    int    `json:"number"     bson:"number"`
	Title     string `json:"title"      bson:"title"`
	Body      string `json:"body"       bson:"body"`
	State     string `json:"state"      bson:"state"`
	HTMLURL   string `json:"html_url"   bson:"html_url"`
	Author    string `json:"author"     bson:"author"`
	CreatedAt string `json:"created_at" bson:"created_at"`
	UpdatedAt string `json:"updated_at" bson:"updated_at"`
}
