package model

import "time"

// LinkSettings control what an external reviewer may do through a link.
type LinkSettings struct {
	AllowComments   bool `json:"allowComments" bson:"allowComments"`
	AllowDownload   bool `json:"allowDownload" bson:"allowDownload"`
	RequirePassword bool `json:"requirePassword" bson:"requirePassword"`
	NotifyOnAccess  bool `json:"notifyOnAccess" bson:"notifyOnAccess"`
}

// DefaultLinkSettings returns the settings applied when the caller passes none.
func DefaultLinkSettings() LinkSettings {
	return LinkSettings{AllowComments: true, NotifyOnAccess: true}
}

// ClientReviewLink is a time-boxed capability URL for unauthenticated review.
type ClientReviewLink struct {
	ID             string       `json:"id" bson:"id"`
	ContentID      string       `json:"contentId" bson:"contentId"`
	ClientID       string       `json:"clientId" bson:"clientId"`
	Token          string       `json:"token" bson:"token"`
	URL            string       `json:"url" bson:"url"`
	IsActive       bool         `json:"isActive" bson:"isActive"`
	ExpiresAt      time.Time    `json:"expiresAt" bson:"expiresAt"`
	AccessCount    int64        `json:"accessCount" bson:"accessCount"`
	CreatedAt      time.Time    `json:"createdAt" bson:"createdAt"`
	CreatedBy      string       `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	LastAccessedAt *time.Time   `json:"lastAccessedAt,omitempty" bson:"lastAccessedAt,omitempty"`
	Settings       LinkSettings `json:"settings" bson:"settings"`
	PasswordHash   []byte       `json:"passwordHash,omitempty" bson:"passwordHash,omitempty"`
}

// Usable reports whether the link is active and not expired at now.
func (l *ClientReviewLink) Usable(now time.Time) bool {
	return l.IsActive && l.ExpiresAt.After(now)
}

// Deactivate is one-way: an inactive link never becomes active again.
func (l *ClientReviewLink) Deactivate() bool {
	if !l.IsActive {
		return false
	}
	l.IsActive = false
	return true
}

// Clone returns a deep copy of the link.
func (l *ClientReviewLink) Clone() *ClientReviewLink {
	if l == nil {
		return nil
	}
	ret := *l
	ret.LastAccessedAt = cloneTime(l.LastAccessedAt)
	if l.PasswordHash != nil {
		ret.PasswordHash = append([]byte(nil), l.PasswordHash...)
	}
	return &ret
}
