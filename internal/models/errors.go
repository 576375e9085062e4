package models

import "errors"

// Domain errors shared across the service layer. Handlers map these onto
// HTTP statuses; everything else becomes a 500.
var (
	ErrRepoNotFound        = errors.New("repository not found")
	ErrRepoExists          = errors.New("repository already connected")
	ErrRepoNotReady        = errors.New("repository is not ready")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrFixNotFound         = errors.New("fix job not found")
	ErrMemberNotFound      = errors.New("team member not found")
	ErrMemberExists        = errors.New("team member already invited")
	ErrQuestionNotFound    = errors.New("question not found")
)
