package model

import (
	"slices"
	"time"
)

// ContentType enumerates the supported kinds of marketing content.
type ContentType string

const (
	ContentTypeSocialPost         ContentType = "social-post"
	ContentTypeBlogArticle        ContentType = "blog-article"
	ContentTypeEmailCampaign      ContentType = "email-campaign"
	ContentTypeVideoScript        ContentType = "video-script"
	ContentTypeAdvertisement      ContentType = "advertisement"
	ContentTypePressRelease       ContentType = "press-release"
	ContentTypeNewsletter         ContentType = "newsletter"
	ContentTypeLandingPage        ContentType = "landing-page"
	ContentTypeProductDescription ContentType = "product-description"
	ContentTypeMarketingCopy      ContentType = "marketing-copy"
)

// ContentTypes lists every ContentType.
var ContentTypes = []ContentType{
	ContentTypeSocialPost, ContentTypeBlogArticle, ContentTypeEmailCampaign,
	ContentTypeVideoScript, ContentTypeAdvertisement, ContentTypePressRelease,
	ContentTypeNewsletter, ContentTypeLandingPage, ContentTypeProductDescription,
	ContentTypeMarketingCopy,
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool { return slices.Contains(ContentTypes, t) }

// Platform is the publishing channel of an item.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformPinterest Platform = "pinterest"
	PlatformEmail     Platform = "email"
	PlatformWebsite   Platform = "website"
	PlatformBlog      Platform = "blog"
)

// Platforms lists every Platform.
var Platforms = []Platform{
	PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformLinkedIn,
	PlatformTikTok, PlatformYouTube, PlatformPinterest, PlatformEmail,
	PlatformWebsite, PlatformBlog,
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool { return slices.Contains(Platforms, p) }

// Priority orders items by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool { return slices.Contains(priorities, p) }

// Raise returns the next priority level; urgent stays urgent.
func (p Priority) Raise() Priority {
	idx := slices.Index(priorities, p)
	if idx < 0 {
		return PriorityMedium
	}
	if idx == len(priorities)-1 {
		return p
	}
	return priorities[idx+1]
}

// ContentItem is the aggregate root tracked through the approval lifecycle.
type ContentItem struct {
	ID          string      `json:"id" bson:"_id"`
	ClientID    string      `json:"clientId" bson:"clientId"`
	CampaignID  string      `json:"campaignId,omitempty" bson:"campaignId,omitempty"`
	Title       string      `json:"title" bson:"title"`
	Description string      `json:"description,omitempty" bson:"description,omitempty"`
	ContentType ContentType `json:"contentType" bson:"contentType"`
	Platform    Platform    `json:"platform" bson:"platform"`
	Priority    Priority    `json:"priority" bson:"priority"`

	Status               Status     `json:"status" bson:"status"`
	AssignedTo           []string   `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	ApprovedBy           []string   `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	RejectedBy           []string   `json:"rejectedBy,omitempty" bson:"rejectedBy,omitempty"`
	DueDate              *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	ScheduledPublishDate *time.Time `json:"scheduledPublishDate,omitempty" bson:"scheduledPublishDate,omitempty"`
	WorkflowID           string     `json:"workflowId,omitempty" bson:"workflowId,omitempty"`

	Versions         []*ContentVersion `json:"versions" bson:"versions"`
	CurrentVersionID string            `json:"currentVersionId" bson:"currentVersionId"`
	Actions          []*ApprovalAction `json:"actions" bson:"actions"`

	Comments           []*ApprovalComment `json:"comments" bson:"comments"`
	TotalComments      int                `json:"totalComments" bson:"totalComments"`
	UnresolvedComments int                `json:"unresolvedComments" bson:"unresolvedComments"`

	ReviewLinks []*ClientReviewLink `json:"reviewLinks,omitempty" bson:"reviewLinks,omitempty"`

	Tags            []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedBy       string     `json:"createdBy" bson:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
	LastActivityAt  time.Time  `json:"lastActivityAt" bson:"lastActivityAt"`
	RemindersSent   int        `json:"remindersSent" bson:"remindersSent"`
	LastReminderAt  *time.Time `json:"lastReminderAt,omitempty" bson:"lastReminderAt,omitempty"`
	LastEscalatedAt *time.Time `json:"lastEscalatedAt,omitempty" bson:"lastEscalatedAt,omitempty"`

	// Revision is bumped on every save; optimistic stores compare it.
	Revision int64 `json:"revision" bson:"revision"`
}

// Touch records a mutation at now.
func (c *ContentItem) Touch(now time.Time) {
	c.UpdatedAt = now
	c.LastActivityAt = now
}

// CurrentVersion returns the version currentVersionId points to.
func (c *ContentItem) CurrentVersion() *ContentVersion {
	return c.Version(c.CurrentVersionID)
}

// Version looks up a version by id.
func (c *ContentItem) Version(id string) *ContentVersion {
	for _, v := range c.Versions {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Comment looks up a comment by id.
func (c *ContentItem) Comment(id string) *ApprovalComment {
	for _, cm := range c.Comments {
		if cm.ID == id {
			return cm
		}
	}
	return nil
}

// Link looks up a review link by id.
func (c *ContentItem) Link(id string) *ClientReviewLink {
	for _, l := range c.ReviewLinks {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// IsOverdue reports whether the due date passed while the item still awaits
// approval.
func (c *ContentItem) IsOverdue(now time.Time) bool {
	if c.DueDate == nil || !c.DueDate.Before(now) {
		return false
	}
	return c.Status != StatusApproved && c.Status != StatusPublished
}

// IsAssigned reports whether userID is among the assigned approvers.
func (c *ContentItem) IsAssigned(userID string) bool {
	return slices.Contains(c.AssignedTo, userID)
}

// Clone returns a deep copy; the engine never shares item state by reference.
func (c *ContentItem) Clone() *ContentItem {
	if c == nil {
		return nil
	}
	ret := *c
	ret.AssignedTo = slices.Clone(c.AssignedTo)
	ret.ApprovedBy = slices.Clone(c.ApprovedBy)
	ret.RejectedBy = slices.Clone(c.RejectedBy)
	ret.Tags = slices.Clone(c.Tags)
	ret.DueDate = cloneTime(c.DueDate)
	ret.ScheduledPublishDate = cloneTime(c.ScheduledPublishDate)
	ret.LastReminderAt = cloneTime(c.LastReminderAt)
	ret.LastEscalatedAt = cloneTime(c.LastEscalatedAt)
	if c.Versions != nil {
		ret.Versions = make([]*ContentVersion, len(c.Versions))
		for i, v := range c.Versions {
			ret.Versions[i] = v.Clone()
		}
	}
	if c.Actions != nil {
		ret.Actions = make([]*ApprovalAction, len(c.Actions))
		for i, a := range c.Actions {
			ret.Actions[i] = a.Clone()
		}
	}
	if c.Comments != nil {
		ret.Comments = make([]*ApprovalComment, len(c.Comments))
		for i, cm := range c.Comments {
			ret.Comments[i] = cm.Clone()
		}
	}
	if c.ReviewLinks != nil {
		ret.ReviewLinks = make([]*ClientReviewLink, len(c.ReviewLinks))
		for i, l := range c.ReviewLinks {
			ret.ReviewLinks[i] = l.Clone()
		}
	}
	return &ret
}

// Redacted returns a deep copy without link password hashes; it is the form
// handed to callers outside the engine.
func (c *ContentItem) Redacted() *ContentItem {
	ret := c.Clone()
	if ret == nil {
		return nil
	}
	for _, l := range ret.ReviewLinks {
		l.PasswordHash = nil
	}
	return ret
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
