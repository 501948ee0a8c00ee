package memory

import (
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/dao/criteria"
	"github.com/viant/contentflow/service/dao/store"
)

// Service is an in-memory, thread-safe content repository. All API methods
// work with copies to eliminate data races between goroutines.
type Service struct {
	*store.MemoryStore[string, model.ContentItem]
}

var _ dao.Service[string, model.ContentItem] = (*Service)(nil)

func contentKey(item *model.ContentItem) string { return item.ID }

func createdFirst(a, b *model.ContentItem) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// New creates an empty repository.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, model.ContentItem](contentKey, (*model.ContentItem).Clone).
			WithMatcher(criteria.MatchContent).
			WithOrder(createdFirst),
	}
}
