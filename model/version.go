package model

import (
	"slices"
	"time"
)

// Payload is the typed content snapshot carried by a version.
type Payload struct {
	Title         string     `json:"title,omitempty" bson:"title,omitempty" validate:"max=300"`
	Body          string     `json:"body,omitempty" bson:"body,omitempty"`
	Caption       string     `json:"caption,omitempty" bson:"caption,omitempty"`
	Hashtags      []string   `json:"hashtags,omitempty" bson:"hashtags,omitempty" validate:"dive,required,max=100"`
	CallToAction  string     `json:"callToAction,omitempty" bson:"callToAction,omitempty" validate:"max=200"`
	MediaURLs     []string   `json:"mediaUrls,omitempty" bson:"mediaUrls,omitempty" validate:"dive,url"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty" bson:"scheduledDate,omitempty"`
}

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	p.Hashtags = slices.Clone(p.Hashtags)
	p.MediaURLs = slices.Clone(p.MediaURLs)
	p.ScheduledDate = cloneTime(p.ScheduledDate)
	return p
}

// ContentVersion is an immutable snapshot of an item's content.
type ContentVersion struct {
	ID            string    `json:"id" bson:"id"`
	VersionNumber int       `json:"versionNumber" bson:"versionNumber"`
	Content       Payload   `json:"content" bson:"content"`
	Changes       string    `json:"changes,omitempty" bson:"changes,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	CreatedBy     string    `json:"createdBy" bson:"createdBy"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Clone returns a deep copy of the version.
func (v *ContentVersion) Clone() *ContentVersion {
	if v == nil {
		return nil
	}
	ret := *v
	ret.Content = v.Content.Clone()
	return &ret
}
