// Package stats derives read-only views from items: rollups, filters,
// recent activity and upcoming deadlines.
package stats

import (
	"sort"
	"time"

	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/audit"
)

// Summary is a rollup over a set of items.
type Summary struct {
	Total           int                       `json:"total"`
	ByStatus        map[model.Status]int      `json:"byStatus"`
	ByContentType   map[model.ContentType]int `json:"byContentType"`
	ByPlatform      map[model.Platform]int    `json:"byPlatform"`
	Overdue         int                       `json:"overdue"`
	PendingApproval int                       `json:"pendingApproval"`
	ApprovalRate    float64                   `json:"approvalRate"`
}

// Summarize counts items at now. ApprovalRate is approved over total and 0
// for an empty set.
func Summarize(items []*model.ContentItem, now time.Time) *Summary {
	ret := &Summary{
		Total:         len(items),
		ByStatus:      map[model.Status]int{},
		ByContentType: map[model.ContentType]int{},
		ByPlatform:    map[model.Platform]int{},
	}
	for _, item := range items {
		ret.ByStatus[item.Status]++
		ret.ByContentType[item.ContentType]++
		ret.ByPlatform[item.Platform]++
		if item.IsOverdue(now) {
			ret.Overdue++
		}
		if item.Status == model.StatusPending || item.Status == model.StatusInReview {
			ret.PendingApproval++
		}
	}
	if ret.Total > 0 {
		ret.ApprovalRate = float64(ret.ByStatus[model.StatusApproved]) / float64(ret.Total)
	}
	return ret
}

// RecentActions returns the newest limit actions across items.
func RecentActions(items []*model.ContentItem, limit int) []*model.ApprovalAction {
	return audit.Recent(items, limit)
}

// UpcomingDue returns up to limit items awaiting approval whose due date is
// not yet past, soonest first.
func UpcomingDue(items []*model.ContentItem, now time.Time, limit int) []*model.ContentItem {
	var ret []*model.ContentItem
	for _, item := range items {
		if item.DueDate == nil || item.DueDate.Before(now) {
			continue
		}
		if item.Status == model.StatusApproved || item.Status == model.StatusPublished {
			continue
		}
		ret = append(ret, item)
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].DueDate.Before(*ret[j].DueDate) })
	if limit >= 0 && len(ret) > limit {
		ret = ret[:limit]
	}
	return ret
}

// ByUser returns the items assigned to userID.
func ByUser(items []*model.ContentItem, userID string) []*model.ContentItem {
	return Filter(items, &Criteria{Assignees: []string{userID}}, time.Time{})
}
