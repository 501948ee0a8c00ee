package stats

import (
	"fmt"
	"strings"

	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/parsly"
)

// Query keys understood by Parse.
const (
	keyStatus   = "status"
	keyType     = "type"
	keyPlatform = "platform"
	keyPriority = "priority"
	keyClient   = "client"
	keyCampaign = "campaign"
	keyAssignee = "assignee"
	keyTag      = "tag"
	flagOverdue = "overdue"
)

// Parse turns a compact query such as
//
//	status:pending,in-review platform:instagram overdue "spring launch"
//
// into Criteria. Quoted phrases and bare words form the text search.
func Parse(query string) (*Criteria, error) {
	ret := &Criteria{}
	cursor := parsly.NewCursor("", []byte(query), 0)
	var words []string
	for {
		cursor.MatchOne(whitespaceToken)
		if cursor.Pos >= cursor.InputSize {
			break
		}
		matched := cursor.MatchAny(quotedToken, termToken)
		switch matched.Code {
		case quotedCode:
			phrase := matched.Text(cursor)
			phrase = strings.ReplaceAll(phrase[1:len(phrase)-1], `\"`, `"`)
			words = append(words, phrase)
		case termCode:
			term := matched.Text(cursor)
			if cursor.MatchOne(colonToken).Code != colonCode {
				if strings.EqualFold(term, flagOverdue) {
					ret.Overdue = true
					continue
				}
				words = append(words, term)
				continue
			}
			values := cursor.MatchOne(valuesToken)
			if values.Code != valuesCode {
				return nil, fmt.Errorf("%w: %v", model.ErrValidation, cursor.NewError(valuesToken))
			}
			if err := ret.set(strings.ToLower(term), splitValues(values.Text(cursor))); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %v", model.ErrValidation, cursor.NewError(quotedToken, termToken))
		}
	}
	ret.Text = strings.TrimSpace(strings.Join(words, " "))
	return ret, nil
}

func (c *Criteria) set(key string, values []string) error {
	if len(values) == 0 {
		return validation.Failf("%s requires a value", key)
	}
	switch key {
	case keyStatus:
		for _, v := range values {
			s := model.Status(v)
			if !s.Valid() {
				return validation.Failf("unsupported status %q", v)
			}
			c.Statuses = append(c.Statuses, s)
		}
	case keyType:
		for _, v := range values {
			t := model.ContentType(v)
			if !t.Valid() {
				return validation.Failf("unsupported content type %q", v)
			}
			c.ContentTypes = append(c.ContentTypes, t)
		}
	case keyPlatform:
		for _, v := range values {
			p := model.Platform(v)
			if !p.Valid() {
				return validation.Failf("unsupported platform %q", v)
			}
			c.Platforms = append(c.Platforms, p)
		}
	case keyPriority:
		for _, v := range values {
			p := model.Priority(v)
			if !p.Valid() {
				return validation.Failf("unsupported priority %q", v)
			}
			c.Priorities = append(c.Priorities, p)
		}
	case keyClient:
		c.ClientIDs = append(c.ClientIDs, values...)
	case keyCampaign:
		c.CampaignIDs = append(c.CampaignIDs, values...)
	case keyAssignee:
		c.Assignees = append(c.Assignees, values...)
	case keyTag:
		c.Tags = append(c.Tags, values...)
	default:
		return validation.Failf("unsupported query key %q", key)
	}
	return nil
}

func splitValues(text string) []string {
	var ret []string
	for _, v := range strings.Split(text, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}
