package stats

import (
	"slices"
	"strings"
	"time"

	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/dao/criteria"
)

// Criteria selects items. Empty fields match everything; values within a
// field are alternatives and fields combine with AND.
type Criteria struct {
	Statuses     []model.Status      `json:"statuses,omitempty"`
	ContentTypes []model.ContentType `json:"contentTypes,omitempty"`
	Platforms    []model.Platform    `json:"platforms,omitempty"`
	Priorities   []model.Priority    `json:"priorities,omitempty"`
	ClientIDs    []string            `json:"clientIds,omitempty"`
	CampaignIDs  []string            `json:"campaignIds,omitempty"`
	Assignees    []string            `json:"assignees,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	Overdue      bool                `json:"overdue,omitempty"`
	Text         string              `json:"text,omitempty"`
}

// Parameters returns the part of the criteria repositories can apply.
func (c *Criteria) Parameters() []*dao.Parameter {
	if c == nil {
		return nil
	}
	var ret []*dao.Parameter
	if len(c.Statuses) > 0 {
		ret = append(ret, criteria.ByStatus(c.Statuses...))
	}
	if len(c.ClientIDs) > 0 {
		ret = append(ret, &dao.Parameter{Name: criteria.ClientID, Value: c.ClientIDs})
	}
	if len(c.CampaignIDs) > 0 {
		ret = append(ret, &dao.Parameter{Name: criteria.CampaignID, Value: c.CampaignIDs})
	}
	if len(c.Assignees) > 0 {
		ret = append(ret, &dao.Parameter{Name: criteria.AssignedTo, Value: c.Assignees})
	}
	return ret
}

// Match reports whether item satisfies every criterion at now.
func (c *Criteria) Match(item *model.ContentItem, now time.Time) bool {
	if c == nil {
		return true
	}
	switch {
	case len(c.Statuses) > 0 && !slices.Contains(c.Statuses, item.Status),
		len(c.ContentTypes) > 0 && !slices.Contains(c.ContentTypes, item.ContentType),
		len(c.Platforms) > 0 && !slices.Contains(c.Platforms, item.Platform),
		len(c.Priorities) > 0 && !slices.Contains(c.Priorities, item.Priority),
		len(c.ClientIDs) > 0 && !slices.Contains(c.ClientIDs, item.ClientID),
		len(c.CampaignIDs) > 0 && !slices.Contains(c.CampaignIDs, item.CampaignID),
		len(c.Assignees) > 0 && !anyOf(item.AssignedTo, c.Assignees),
		len(c.Tags) > 0 && !anyOf(item.Tags, c.Tags),
		c.Overdue && !item.IsOverdue(now):
		return false
	}
	return c.Text == "" || matchText(item, c.Text)
}

func anyOf(values, wanted []string) bool {
	return slices.ContainsFunc(values, func(v string) bool { return slices.Contains(wanted, v) })
}

// matchText requires every word to appear, case-insensitively, in the
// title, description, tags or current version.
func matchText(item *model.ContentItem, text string) bool {
	haystack := []string{item.Title, item.Description, strings.Join(item.Tags, " ")}
	if v := item.CurrentVersion(); v != nil {
		haystack = append(haystack, v.Content.Title, v.Content.Body, v.Content.Caption, strings.Join(v.Content.Hashtags, " "))
	}
	all := strings.ToLower(strings.Join(haystack, "\n"))
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if !strings.Contains(all, word) {
			return false
		}
	}
	return true
}

// Filter returns the items matching c in their original order.
func Filter(items []*model.ContentItem, c *Criteria, now time.Time) []*model.ContentItem {
	var ret []*model.ContentItem
	for _, item := range items {
		if c.Match(item, now) {
			ret = append(ret, item)
		}
	}
	return ret
}
