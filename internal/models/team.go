package models

import "time"

// TeamMember is a workspace collaborator, resolved from their GitHub profile
// at invite time.
type TeamMember struct {
	Login     string    `bson:"_id" json:"login"` // GitHub login
	Name      string    `bson:"name" json:"name"`
	AvatarURL string    `bson:"avatar_url" json:"avatar_url"`
	Role      string    `bson:"role" json:"role"` // "admin" | "member"
	InvitedAt time.Time `bson:"invited_at" json:"invited_at"`
}
