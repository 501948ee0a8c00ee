package criteria

import (
	"slices"

	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
)

// Parameter names understood by content repositories.
const (
	Status     = "status"
	ClientID   = "clientId"
	CampaignID = "campaignId"
	AssignedTo = "assignedTo"
	LinkToken  = "reviewLinks.token"
	LinkID     = "reviewLinks.id"
)

// ByStatus narrows a List call to the given statuses.
func ByStatus(statuses ...model.Status) *dao.Parameter {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return &dao.Parameter{Name: Status, Value: values}
}

// ByLinkToken narrows a List call to the item holding a review link token.
func ByLinkToken(token string) *dao.Parameter {
	return &dao.Parameter{Name: LinkToken, Value: token}
}

// ByLinkID narrows a List call to the item holding a review link.
func ByLinkID(linkID string) *dao.Parameter {
	return &dao.Parameter{Name: LinkID, Value: linkID}
}

// MatchContent reports whether item satisfies every known parameter.
func MatchContent(item *model.ContentItem, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		values := parameter.Values()
		if len(values) == 0 {
			continue
		}
		switch parameter.Name {
		case Status:
			if !slices.Contains(values, string(item.Status)) {
				return false
			}
		case ClientID:
			if !slices.Contains(values, item.ClientID) {
				return false
			}
		case CampaignID:
			if !slices.Contains(values, item.CampaignID) {
				return false
			}
		case AssignedTo:
			if !slices.ContainsFunc(item.AssignedTo, func(u string) bool { return slices.Contains(values, u) }) {
				return false
			}
		case LinkToken:
			if !slices.ContainsFunc(item.ReviewLinks, func(l *model.ClientReviewLink) bool { return slices.Contains(values, l.Token) }) {
				return false
			}
		case LinkID:
			if !slices.ContainsFunc(item.ReviewLinks, func(l *model.ClientReviewLink) bool { return slices.Contains(values, l.ID) }) {
				return false
			}
		}
	}
	return true
}
