package model

import (
	"maps"
	"slices"
	"time"
)

// Role distinguishes agency staff from client reviewers.
type Role string

const (
	RoleAgency Role = "agency"
	RoleClient Role = "client"
)

// Author identifies who wrote a comment.
type Author struct {
	ID    string `json:"id" bson:"id" validate:"required"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Role  Role   `json:"role" bson:"role" validate:"required,oneof=agency client"`
}

// ApprovalComment is one message of an item's discussion thread.
type ApprovalComment struct {
	ID              string              `json:"id" bson:"id"`
	ContentID       string              `json:"contentId" bson:"contentId"`
	ParentCommentID string              `json:"parentCommentId,omitempty" bson:"parentCommentId,omitempty"`
	Author          Author              `json:"author" bson:"author"`
	Message         string              `json:"message" bson:"message"`
	Mentions        []string            `json:"mentions,omitempty" bson:"mentions,omitempty"`
	Resolved        bool                `json:"resolved" bson:"resolved"`
	ResolvedBy      string              `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
	ResolvedAt      *time.Time          `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	Reactions       map[string][]string `json:"reactions,omitempty" bson:"reactions,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy of the comment.
func (c *ApprovalComment) Clone() *ApprovalComment {
	if c == nil {
		return nil
	}
	ret := *c
	ret.Mentions = slices.Clone(c.Mentions)
	ret.ResolvedAt = cloneTime(c.ResolvedAt)
	if c.Reactions != nil {
		ret.Reactions = maps.Clone(c.Reactions)
		for emoji, users := range ret.Reactions {
			ret.Reactions[emoji] = slices.Clone(users)
		}
	}
	return &ret
}
