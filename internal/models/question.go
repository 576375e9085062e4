package models

import "time"

// AskRequest is the payload for POST /qna.
type AskRequest struct {
	Repo     string `json:"repo"`     // repository full name
	Question string `json:"question"` // user's natural-language question
}

// QuestionSource points at the chunk an answer was grounded on.
type QuestionSource struct {
	File      string  `bson:"file" json:"file"`
	Excerpt   string  `bson:"excerpt" json:"excerpt"`
	Relevance float64 `bson:"relevance" json:"relevance"`
}

// Question is a persisted Q&A exchange against a connected repository.
type Question struct {
	ID         string           `bson:"_id" json:"id"`
	RepoID     string           `bson:"repo_full_name" json:"repo"`
	Question   string           `bson:"question" json:"question"`
	Answer     string           `bson:"answer" json:"answer"`
	Sources    []QuestionSource `bson:"sources" json:"sources"`
	Confidence float64          `bson:"confidence" json:"confidence"`
	CreatedAt  time.Time        `bson:"created_at" json:"created_at"`
}
