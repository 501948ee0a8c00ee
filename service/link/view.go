package link

import (
	"time"

	"github.com/viant/contentflow/model"
)

// ReviewView is what an external reviewer sees through a link: the current
// content and, when allowed, the discussion. It carries no identifiers of
// agency staff and no link secrets: comments keep author names and roles,
// mentions and reactions are dropped.
type ReviewView struct {
	ContentID     string                   `json:"contentId"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description,omitempty"`
	ContentType   model.ContentType        `json:"contentType"`
	Platform      model.Platform           `json:"platform"`
	Status        model.Status             `json:"status"`
	VersionNumber int                      `json:"versionNumber,omitempty"`
	Content       *model.Payload           `json:"content,omitempty"`
	DueDate       *time.Time               `json:"dueDate,omitempty"`
	ExpiresAt     time.Time                `json:"expiresAt"`
	AllowComments bool                     `json:"allowComments"`
	AllowDownload bool                     `json:"allowDownload"`
	Comments      []*model.ApprovalComment `json:"comments,omitempty"`
}

func newReviewView(item *model.ContentItem, l *model.ClientReviewLink) *ReviewView {
	ret := &ReviewView{
		ContentID:     item.ID,
		Title:         item.Title,
		Description:   item.Description,
		ContentType:   item.ContentType,
		Platform:      item.Platform,
		Status:        item.Status,
		ExpiresAt:     l.ExpiresAt,
		AllowComments: l.Settings.AllowComments,
		AllowDownload: l.Settings.AllowDownload,
	}
	if item.DueDate != nil {
		due := *item.DueDate
		ret.DueDate = &due
	}
	if current := item.CurrentVersion(); current != nil {
		payload := current.Content.Clone()
		ret.Content = &payload
		ret.VersionNumber = current.VersionNumber
	}
	if l.Settings.AllowComments {
		for _, c := range item.Comments {
			ret.Comments = append(ret.Comments, redactComment(c))
		}
	}
	return ret
}

func redactComment(c *model.ApprovalComment) *model.ApprovalComment {
	ret := c.Clone()
	ret.Author.Email = ""
	if ret.Author.Role != model.RoleClient {
		ret.Author.ID = ""
	}
	ret.Mentions = nil
	ret.ResolvedBy = ""
	ret.Reactions = nil
	return ret
}
