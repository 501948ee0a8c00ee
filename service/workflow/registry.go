// Package workflow keeps approval workflow templates per client.
package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/idgen"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/dao/store"
	"gopkg.in/yaml.v3"
)

// Registry stores workflows; at most one per client is the default.
type Registry struct {
	dao    dao.Service[string, model.ApprovalWorkflow]
	fs     afs.Service
	logger *logrus.Entry
	mu     sync.Mutex
}

// Option customises the registry.
type Option func(*Registry)

// WithDAO replaces the in-memory store.
func WithDAO(d dao.Service[string, model.ApprovalWorkflow]) Option {
	return func(r *Registry) { r.dao = d }
}

// WithFS sets the file system used by Load.
func WithFS(fs afs.Service) Option {
	return func(r *Registry) { r.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(r *Registry) { r.logger = entry }
}

func workflowKey(w *model.ApprovalWorkflow) string { return w.ID }

// New creates a registry.
func New(options ...Option) *Registry {
	ret := &Registry{
		dao:    store.NewMemoryStore[string, model.ApprovalWorkflow](workflowKey, (*model.ApprovalWorkflow).Clone),
		fs:     afs.New(),
		logger: logger.Entry(logger.App),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Save validates and stores a workflow, assigning an id when missing. A
// default workflow clears the default flag of the client's other workflows.
func (r *Registry) Save(ctx context.Context, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	if w == nil {
		return nil, validation.Failf("workflow is required")
	}
	if issues := w.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(issues...))
	}
	w = w.Clone()
	now := clock.Now()
	if w.ID == "" {
		w.ID = idgen.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, err := r.dao.Load(ctx, w.ID); err == nil {
		w.CreatedAt = prev.CreatedAt
	} else {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	if w.IsDefault {
		if err := r.clearDefault(ctx, w.ClientID, w.ID); err != nil {
			return nil, err
		}
	}
	if err := r.dao.Save(ctx, w); err != nil {
		return nil, err
	}
	return w.Clone(), nil
}

// Get returns a workflow by id.
func (r *Registry) Get(ctx context.Context, id string) (*model.ApprovalWorkflow, error) {
	w, err := r.dao.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	return w, nil
}

// List returns the workflows of a client ordered by name; an empty client
// lists all.
func (r *Registry) List(ctx context.Context, clientID string) ([]*model.ApprovalWorkflow, error) {
	all, err := r.dao.List(ctx)
	if err != nil {
		return nil, err
	}
	var ret []*model.ApprovalWorkflow
	for _, w := range all {
		if clientID == "" || w.ClientID == clientID {
			ret = append(ret, w)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Name == ret[j].Name {
			return ret[i].ID < ret[j].ID
		}
		return ret[i].Name < ret[j].Name
	})
	return ret, nil
}

// Default returns the default workflow of a client or model.ErrNotFound.
func (r *Registry) Default(ctx context.Context, clientID string) (*model.ApprovalWorkflow, error) {
	list, err := r.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, w := range list {
		if w.IsDefault {
			return w, nil
		}
	}
	return nil, fmt.Errorf("default workflow of client %s: %w", clientID, model.ErrNotFound)
}

// SetDefault makes id the default of its client.
func (r *Registry) SetDefault(ctx context.Context, id string) (*model.ApprovalWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = r.clearDefault(ctx, w.ClientID, w.ID); err != nil {
		return nil, err
	}
	w.IsDefault = true
	w.UpdatedAt = clock.Now()
	if err = r.dao.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes a workflow.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.dao.Delete(ctx, id); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *Registry) clearDefault(ctx context.Context, clientID, keep string) error {
	all, err := r.dao.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ClientID != clientID || other.ID == keep || !other.IsDefault {
			continue
		}
		other.IsDefault = false
		other.UpdatedAt = clock.Now()
		if err := r.dao.Save(ctx, other); err != nil {
			return err
		}
	}
	return nil
}

// DecodeYAML decodes one or more YAML documents, each holding a workflow.
func DecodeYAML(encoded []byte) ([]*model.ApprovalWorkflow, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(encoded))
	var ret []*model.ApprovalWorkflow
	for {
		w := &model.ApprovalWorkflow{}
		err := decoder.Decode(w)
		if errors.Is(err, io.EOF) {
			return ret, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode workflow: %w", err)
		}
		if w.Name == "" && len(w.Stages) == 0 {
			continue
		}
		ret = append(ret, w)
	}
}

// Load reads workflows from a YAML file or every .yaml/.yml file of a
// folder and saves them. It returns the number of workflows loaded.
func (r *Registry) Load(ctx context.Context, URL string) (int, error) {
	object, err := r.fs.Object(ctx, URL)
	if err != nil {
		return 0, fmt.Errorf("failed to locate workflows at %s: %w", URL, err)
	}
	urls := []string{URL}
	if object.IsDir() {
		urls = urls[:0]
		objects, err := r.fs.List(ctx, URL, option.NewRecursive(true))
		if err != nil {
			return 0, fmt.Errorf("failed to list workflows at %s: %w", URL, err)
		}
		for _, candidate := range objects {
			ext := strings.ToLower(filepath.Ext(candidate.Name()))
			if !candidate.IsDir() && (ext == ".yaml" || ext == ".yml") {
				urls = append(urls, candidate.URL())
			}
		}
		sort.Strings(urls)
	}
	loaded := 0
	for _, location := range urls {
		data, err := r.fs.DownloadWithURL(ctx, location)
		if err != nil {
			return loaded, fmt.Errorf("failed to read workflow %s: %w", location, err)
		}
		workflows, err := DecodeYAML(data)
		if err != nil {
			return loaded, fmt.Errorf("%s: %w", location, err)
		}
		for _, w := range workflows {
			if _, err := r.Save(ctx, w); err != nil {
				return loaded, fmt.Errorf("%s: workflow %s: %w", location, w.Name, err)
			}
			loaded++
		}
	}
	r.logger.WithFields(logrus.Fields{"url": URL, "workflows": loaded}).Info("workflows loaded")
	return loaded, nil
}
