package version

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
	"github.com/viant/contentflow/model"
)

// Diff is a field-level change set between two versions plus an
// informational line diff of the body.
type Diff struct {
	FromVersion         int      `json:"fromVersion"`
	ToVersion           int      `json:"toVersion"`
	TitleChanged        bool     `json:"titleChanged"`
	BodyChanged         bool     `json:"bodyChanged"`
	CaptionChanged      bool     `json:"captionChanged"`
	HashtagsChanged     bool     `json:"hashtagsChanged"`
	CallToActionChanged bool     `json:"callToActionChanged"`
	MediaChanged        bool     `json:"mediaChanged"`
	ScheduleChanged     bool     `json:"scheduleChanged"`
	BodyDiff            string   `json:"bodyDiff,omitempty"`
	Stats               DiffStat `json:"stats"`
}

// DiffStat summarises the body diff.
type DiffStat struct {
	Hunks   int `json:"hunks"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Changed lists the payload fields that differ.
func (d *Diff) Changed() []string {
	var ret []string
	for _, f := range []struct {
		name    string
		changed bool
	}{
		{"title", d.TitleChanged},
		{"body", d.BodyChanged},
		{"caption", d.CaptionChanged},
		{"hashtags", d.HashtagsChanged},
		{"callToAction", d.CallToActionChanged},
		{"mediaUrls", d.MediaChanged},
		{"scheduledDate", d.ScheduleChanged},
	} {
		if f.changed {
			ret = append(ret, f.name)
		}
	}
	return ret
}

// Compare diffs two versions of the same item. It does not mutate item.
func Compare(item *model.ContentItem, fromID, toID string) (*Diff, error) {
	from := item.Version(fromID)
	if from == nil {
		return nil, fmt.Errorf("item %s version %s: %w", item.ID, fromID, model.ErrVersionNotFound)
	}
	to := item.Version(toID)
	if to == nil {
		return nil, fmt.Errorf("item %s version %s: %w", item.ID, toID, model.ErrVersionNotFound)
	}
	a, b := from.Content, to.Content
	ret := &Diff{
		FromVersion:         from.VersionNumber,
		ToVersion:           to.VersionNumber,
		TitleChanged:        a.Title != b.Title,
		BodyChanged:         a.Body != b.Body,
		CaptionChanged:      a.Caption != b.Caption,
		HashtagsChanged:     !slices.Equal(a.Hashtags, b.Hashtags),
		CallToActionChanged: a.CallToAction != b.CallToAction,
		MediaChanged:        !slices.Equal(a.MediaURLs, b.MediaURLs),
		ScheduleChanged:     !sameTime(a, b),
	}
	if ret.BodyChanged {
		body, stat, err := bodyDiff(a.Body, b.Body, from.VersionNumber, to.VersionNumber)
		if err != nil {
			return nil, err
		}
		ret.BodyDiff = body
		ret.Stats = stat
	}
	return ret, nil
}

func sameTime(a, b model.Payload) bool {
	switch {
	case a.ScheduledDate == nil && b.ScheduledDate == nil:
		return true
	case a.ScheduledDate == nil || b.ScheduledDate == nil:
		return false
	}
	return a.ScheduledDate.Equal(*b.ScheduledDate)
}

func bodyDiff(oldBody, newBody string, fromNumber, toNumber int) (string, DiffStat, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldBody),
		B:        difflib.SplitLines(newBody),
		FromFile: fmt.Sprintf("v%d", fromNumber),
		ToFile:   fmt.Sprintf("v%d", toNumber),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil || text == "" {
		return text, DiffStat{}, err
	}
	fileDiff, err := sgdiff.ParseFileDiff([]byte(text))
	if err != nil {
		return "", DiffStat{}, fmt.Errorf("failed to parse body diff: %w", err)
	}
	stat := DiffStat{Hunks: len(fileDiff.Hunks)}
	for _, hunk := range fileDiff.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				stat.Added++
			case strings.HasPrefix(line, "-"):
				stat.Removed++
			}
		}
	}
	return text, stat, nil
}
