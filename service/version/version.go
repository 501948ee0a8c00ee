// Package version keeps the immutable snapshot history of an item.
package version

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/idgen"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/audit"
)

// MaxCaptionLength bounds social post captions.
const MaxCaptionLength = 2200

// Normalize trims and de-duplicates hashtags and checks the payload against
// the rules of the item's content type.
func Normalize(contentType model.ContentType, payload *model.Payload) error {
	if payload == nil {
		return validation.Failf("content is required")
	}
	payload.Title = strings.TrimSpace(payload.Title)
	var hashtags []string
	for _, tag := range payload.Hashtags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(hashtags, tag) {
			continue
		}
		hashtags = append(hashtags, tag)
	}
	payload.Hashtags = hashtags
	if err := validation.Struct(payload); err != nil {
		return err
	}
	if payload.Title == "" && strings.TrimSpace(payload.Body) == "" {
		return validation.Failf("title or body is required")
	}
	switch contentType {
	case model.ContentTypeEmailCampaign, model.ContentTypeNewsletter:
		if payload.Title == "" {
			return validation.Failf("%s requires a subject line in title", contentType)
		}
	case model.ContentTypeVideoScript, model.ContentTypeBlogArticle:
		if strings.TrimSpace(payload.Body) == "" {
			return validation.Failf("%s requires a body", contentType)
		}
	case model.ContentTypeSocialPost:
		if utf8.RuneCountInString(payload.Caption) > MaxCaptionLength {
			return validation.Failf("caption exceeds %d characters", MaxCaptionLength)
		}
	}
	return nil
}

// Initial records version 1 of a new item without touching status or the
// action log.
func Initial(item *model.ContentItem, payload model.Payload, actor string) (*model.ContentVersion, error) {
	payload = payload.Clone()
	if err := Normalize(item.ContentType, &payload); err != nil {
		return nil, err
	}
	ret := &model.ContentVersion{
		ID:            idgen.New(),
		VersionNumber: nextNumber(item.Versions),
		Content:       payload,
		Changes:       "initial version",
		CreatedAt:     clock.Now(),
		CreatedBy:     actor,
	}
	item.Versions = append(item.Versions, ret)
	item.CurrentVersionID = ret.ID
	return ret.Clone(), nil
}

// Add appends the next version, makes it current and sends the item back
// to draft.
func Add(item *model.ContentItem, payload model.Payload, changes, notes, actor string) (*model.ContentVersion, error) {
	payload = payload.Clone()
	if err := Normalize(item.ContentType, &payload); err != nil {
		return nil, err
	}
	from := item.Status
	to, err := model.Next(from, model.TransitionEdit)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	ret := &model.ContentVersion{
		ID:            idgen.New(),
		VersionNumber: nextNumber(item.Versions),
		Content:       payload,
		Changes:       changes,
		CreatedAt:     now,
		CreatedBy:     actor,
		Notes:         notes,
	}
	item.Versions = append(item.Versions, ret)
	item.CurrentVersionID = ret.ID
	item.Status = to
	details := fmt.Sprintf("version %d created", ret.VersionNumber)
	if changes != "" {
		details += ": " + changes
	}
	audit.Append(item, audit.Entry{Type: model.ActionVersionUpdate, From: from.Ptr(), To: to.Ptr(), Actor: actor, Details: details})
	item.Touch(now)
	return ret.Clone(), nil
}

// Revert points the item back at an earlier version without creating one.
func Revert(item *model.ContentItem, versionID, actor string) (*model.ContentVersion, error) {
	target := item.Version(versionID)
	if target == nil {
		return nil, fmt.Errorf("item %s version %s: %w", item.ID, versionID, model.ErrVersionNotFound)
	}
	from := item.Status
	to, err := model.Next(from, model.TransitionEdit)
	if err != nil {
		return nil, err
	}
	item.CurrentVersionID = target.ID
	item.Status = to
	audit.Append(item, audit.Entry{
		Type:    model.ActionVersionUpdate,
		From:    from.Ptr(),
		To:      to.Ptr(),
		Actor:   actor,
		Details: fmt.Sprintf("reverted to version %d", target.VersionNumber),
	})
	item.Touch(clock.Now())
	return target.Clone(), nil
}

func nextNumber(versions []*model.ContentVersion) int {
	highest := 0
	for _, v := range versions {
		highest = max(highest, v.VersionNumber)
	}
	return highest + 1
}
