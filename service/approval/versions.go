package approval

import (
	"context"
	"fmt"

	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/notification"
	"github.com/viant/contentflow/service/version"
	"github.com/viant/contentflow/tracing"
)

// VersionInput describes a new content version.
type VersionInput struct {
	Content model.Payload `json:"content"`
	Changes string        `json:"changes,omitempty"`
	Notes   string        `json:"notes,omitempty"`
	Actor   string        `json:"actor"`
}

// AddVersion appends a version and returns the item to draft. It is the
// only way out of revision-requested.
func (s *Service) AddVersion(ctx context.Context, id string, in VersionInput) (*model.ContentVersion, error) {
	var ret *model.ContentVersion
	_, err := s.update(ctx, "add-version", id, func(item *model.ContentItem, fx *content.Effects) error {
		revising := item.Status == model.StatusRevisionRequested
		v, err := version.Add(item, in.Content, in.Changes, in.Notes, in.Actor)
		if err != nil {
			return err
		}
		if revising {
			fx.Notify(notification.Fanout(without(item.AssignedTo, in.Actor), model.NotificationStatusChanged, item,
				"Revision submitted", fmt.Sprintf("%q has a new version %d", item.Title, v.VersionNumber))...)
		}
		ret = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// RevertToVersion makes an existing version current again and returns the
// item to draft.
func (s *Service) RevertToVersion(ctx context.Context, id, versionID, actor string) (*model.ContentVersion, error) {
	var ret *model.ContentVersion
	_, err := s.update(ctx, "revert-version", id, func(item *model.ContentItem, _ *content.Effects) error {
		v, err := version.Revert(item, versionID, actor)
		ret = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// CompareVersions reports which fields differ between two versions of the
// item.
func (s *Service) CompareVersions(ctx context.Context, id, fromVersionID, toVersionID string) (*version.Diff, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.compare-versions", "INTERNAL")
	item, err := s.store.Get(ctx, id)
	var diff *version.Diff
	if err == nil {
		diff, err = version.Compare(item, fromVersionID, toVersionID)
	}
	tracing.EndSpan(span, err)
	return diff, err
}
