package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/dao/criteria"
)

// Service implements a file-system content repository: one JSON document
// per item under basePath. Any afs-supported scheme works (file://, mem://,
// s3://, gs://).
type Service struct {
	basePath string
	fs       afs.Service
	logger   *logrus.Entry
	mu       sync.RWMutex
}

// Ensure Service implements dao.Service
var _ dao.Service[string, model.ContentItem] = (*Service)(nil)

// Option customises the service.
type Option func(*Service)

// WithLogger sets the entry used to report unreadable documents.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a repository rooted at basePath.
func New(basePath string, options ...Option) *Service {
	ret := &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       afs.New(),
		logger:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Save persists an item.
func (s *Service) Save(ctx context.Context, item *model.ContentItem) error {
	if item == nil {
		return dao.ErrNilEntity
	}
	if !validID(item.ID) {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", item.ID, err)
	}
	filePath := s.itemPath(item.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save item to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves an item.
func (s *Service) Load(ctx context.Context, id string) (*model.ContentItem, error) {
	if !validID(id) {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.itemPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if item exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("item %s: %w", id, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read item file: %w", err)
	}
	var item model.ContentItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item data: %w", err)
	}
	return &item, nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.itemPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if item exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("item %s: %w", id, dao.ErrNotFound)
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete item file: %w", err)
	}
	return nil
}

// List returns every item matching parameters, oldest first.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if exists, _ := s.fs.Exists(ctx, s.basePath); !exists {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list item files: %w", err)
	}

	var items []*model.ContentItem
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("skipping unreadable item")
			continue
		}
		var item model.ContentItem
		if err := json.Unmarshal(data, &item); err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("skipping malformed item")
			continue
		}
		if !criteria.MatchContent(&item, parameters) {
			continue
		}
		items = append(items, &item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Service) itemPath(id string) string {
	return url.Join(s.basePath, id+".json")
}

// validID rejects ids that would resolve outside basePath.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\\x00") && !strings.Contains(id, "..")
}
