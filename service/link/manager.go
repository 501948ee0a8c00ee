// Package link issues and resolves client review links: capability URLs
// that grant time-boxed access to one item without an account.
package link

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/idgen"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/comment"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/dao/criteria"
	"github.com/viant/contentflow/service/notification"
	"golang.org/x/crypto/bcrypt"
)

// Config controls link issuance.
type Config struct {
	BaseURL        string `json:"baseURL" yaml:"baseURL" env:"LINKS_BASE_URL"`
	ExpirationDays int    `json:"expirationDays" yaml:"expirationDays" env:"LINKS_EXPIRATION_DAYS"`
	TokenLength    int    `json:"tokenLength" yaml:"tokenLength" env:"LINKS_TOKEN_LENGTH"`
}

// DefaultConfig issues 7 day links with 32 character tokens.
func DefaultConfig() Config {
	return Config{BaseURL: "http://localhost:8080/review/", ExpirationDays: 7, TokenLength: idgen.DefaultTokenLength}
}

// Request describes a link to issue.
type Request struct {
	ItemID   string              `json:"itemId" validate:"required"`
	ClientID string              `json:"clientId" validate:"required"`
	Actor    string              `json:"actor,omitempty"`
	Settings *model.LinkSettings `json:"settings,omitempty"`
	Password string              `json:"password,omitempty"`
}

type ref struct {
	itemID string
	linkID string
}

// Manager issues, tracks and expires review links over the content store.
type Manager struct {
	store  *content.Store
	config Config
	logger *logrus.Entry

	mu      sync.RWMutex
	byToken map[string]ref
	byLink  map[string]string
}

// Option customises the manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(m *Manager) { m.logger = entry }
}

// New creates a manager.
func New(store *content.Store, config Config, options ...Option) *Manager {
	if config.ExpirationDays <= 0 {
		config.ExpirationDays = DefaultConfig().ExpirationDays
	}
	if config.TokenLength < idgen.MinTokenLength {
		config.TokenLength = idgen.DefaultTokenLength
	}
	ret := &Manager{
		store:   store,
		config:  config,
		logger:  logger.Entry(logger.App),
		byToken: map[string]ref{},
		byLink:  map[string]string{},
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Generate issues a new link for the item.
func (m *Manager) Generate(ctx context.Context, req Request) (*model.ClientReviewLink, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	settings := model.DefaultLinkSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}
	var hash []byte
	if settings.RequirePassword {
		if req.Password == "" {
			return nil, validation.Failf("password is required for a protected link")
		}
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost); err != nil {
			return nil, validation.Failf("unusable password: %v", err)
		}
	}
	token, err := idgen.Token(m.config.TokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate link token: %w", err)
	}
	now := clock.Now()
	issued := &model.ClientReviewLink{
		ID:           idgen.New(),
		ContentID:    req.ItemID,
		ClientID:     req.ClientID,
		Token:        token,
		URL:          m.url(token),
		IsActive:     true,
		ExpiresAt:    now.AddDate(0, 0, m.config.ExpirationDays),
		CreatedAt:    now,
		CreatedBy:    req.Actor,
		Settings:     settings,
		PasswordHash: hash,
	}
	_, err = m.store.Update(ctx, req.ItemID, func(item *model.ContentItem, fx *content.Effects) error {
		item.ReviewLinks = append(item.ReviewLinks, issued)
		item.Touch(now)
		fx.AfterCommit(func() { m.index(item.ID, issued) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{"item": req.ItemID, "link": issued.ID}).Debug("review link issued")
	ret := issued.Clone()
	ret.PasswordHash = nil
	return ret, nil
}

// Resolve returns the item and link for a usable token without recording
// an access. Every failure is model.ErrLinkInvalid.
func (m *Manager) Resolve(ctx context.Context, token, password string) (*model.ContentItem, *model.ClientReviewLink, error) {
	r, ok := m.lookupToken(ctx, token)
	if !ok {
		return nil, nil, model.ErrLinkInvalid
	}
	item, err := m.store.Get(ctx, r.itemID)
	if err != nil {
		return nil, nil, model.ErrLinkInvalid
	}
	found, err := check(item, r.linkID, token, password, clock.Now())
	if err != nil {
		return nil, nil, err
	}
	return item.Redacted(), redact(found), nil
}

// Open resolves a token and records the access in one critical section,
// returning the sanitized review view.
func (m *Manager) Open(ctx context.Context, token, password string) (*ReviewView, error) {
	r, ok := m.lookupToken(ctx, token)
	if !ok {
		return nil, model.ErrLinkInvalid
	}
	var view *ReviewView
	_, err := m.store.Update(ctx, r.itemID, func(item *model.ContentItem, fx *content.Effects) error {
		found, err := check(item, r.linkID, token, password, clock.Now())
		if err != nil {
			return err
		}
		m.recordAccess(item, found, fx)
		view = newReviewView(item, found)
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrLinkInvalid
		}
		return nil, err
	}
	return view, nil
}

// TrackAccess increments the access counter of a link. Concurrent calls
// never lose an increment.
func (m *Manager) TrackAccess(ctx context.Context, linkID string) (*model.ClientReviewLink, error) {
	itemID, err := m.itemOf(ctx, linkID)
	if err != nil {
		return nil, err
	}
	var ret *model.ClientReviewLink
	_, err = m.store.Update(ctx, itemID, func(item *model.ContentItem, fx *content.Effects) error {
		found := item.Link(linkID)
		if found == nil {
			return fmt.Errorf("link %s: %w", linkID, model.ErrNotFound)
		}
		m.recordAccess(item, found, fx)
		ret = redact(found)
		return nil
	})
	return ret, err
}

// Deactivate disables a link for good.
func (m *Manager) Deactivate(ctx context.Context, linkID string) (*model.ClientReviewLink, error) {
	itemID, err := m.itemOf(ctx, linkID)
	if err != nil {
		return nil, err
	}
	var ret *model.ClientReviewLink
	_, err = m.store.Update(ctx, itemID, func(item *model.ContentItem, _ *content.Effects) error {
		found := item.Link(linkID)
		if found == nil {
			return fmt.Errorf("link %s: %w", linkID, model.ErrNotFound)
		}
		if found.Deactivate() {
			item.Touch(clock.Now())
		}
		ret = redact(found)
		return nil
	})
	return ret, err
}

// ExpireLinks deactivates every expired link that is still active and
// returns how many were changed.
func (m *Manager) ExpireLinks(ctx context.Context) (int, error) {
	items, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}
	now := clock.Now()
	total := 0
	for _, candidate := range items {
		if !hasExpired(candidate, now) {
			continue
		}
		changed := 0
		_, err := m.store.Update(ctx, candidate.ID, func(item *model.ContentItem, _ *content.Effects) error {
			for _, l := range item.ReviewLinks {
				if !l.ExpiresAt.After(now) && l.Deactivate() {
					changed++
				}
			}
			if changed == 0 {
				return errUnchanged
			}
			item.Touch(now)
			return nil
		})
		if err != nil && !errors.Is(err, errUnchanged) {
			return total, err
		}
		if err == nil {
			total += changed
		}
	}
	if total > 0 {
		m.logger.WithField("links", total).Info("expired review links deactivated")
	}
	return total, nil
}

// ListLinks returns the links of an item without secrets.
func (m *Manager) ListLinks(ctx context.Context, itemID string) ([]*model.ClientReviewLink, error) {
	item, err := m.store.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	ret := make([]*model.ClientReviewLink, len(item.ReviewLinks))
	for i, l := range item.ReviewLinks {
		ret[i] = redact(l)
	}
	return ret, nil
}

// ClientComment is a comment posted through a review link.
type ClientComment struct {
	Name            string `json:"name" validate:"max=200"`
	Email           string `json:"email" validate:"omitempty,email"`
	Message         string `json:"message" validate:"required"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}

// AddClientComment posts a client-authored comment through a usable link
// that allows comments.
func (m *Manager) AddClientComment(ctx context.Context, token, password string, in ClientComment) (*model.ApprovalComment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	r, ok := m.lookupToken(ctx, token)
	if !ok {
		return nil, model.ErrLinkInvalid
	}
	var ret *model.ApprovalComment
	resolved := false
	_, err := m.store.Update(ctx, r.itemID, func(item *model.ContentItem, fx *content.Effects) error {
		found, err := check(item, r.linkID, token, password, clock.Now())
		if err != nil {
			return err
		}
		resolved = true
		if !found.Settings.AllowComments {
			return validation.Failf("comments are disabled for this link")
		}
		author := model.Author{ID: found.ClientID, Name: in.Name, Email: in.Email, Role: model.RoleClient}
		if ret, err = comment.Add(item, comment.Input{Author: author, Message: in.Message, ParentCommentID: in.ParentCommentID}); err != nil {
			return err
		}
		recipients := append([]string{item.CreatedBy}, item.AssignedTo...)
		fx.Notify(notification.Fanout(recipients, model.NotificationClientComment, item,
			"Client commented on "+item.Title, in.Message)...)
		return nil
	})
	if errors.Is(err, model.ErrNotFound) && !resolved {
		return nil, model.ErrLinkInvalid
	}
	return ret, err
}

var errUnchanged = errors.New("unchanged")

func (m *Manager) recordAccess(item *model.ContentItem, l *model.ClientReviewLink, fx *content.Effects) {
	now := clock.Now()
	l.AccessCount++
	l.LastAccessedAt = &now
	item.Touch(now)
	if l.Settings.NotifyOnAccess {
		fx.Notify(notification.New(item.CreatedBy, model.NotificationLinkAccessed, item,
			"Review link opened", fmt.Sprintf("%s was opened by the client (%d views)", item.Title, l.AccessCount)))
	}
}

func check(item *model.ContentItem, linkID, token, password string, now time.Time) (*model.ClientReviewLink, error) {
	found := item.Link(linkID)
	if found == nil || subtle.ConstantTimeCompare([]byte(found.Token), []byte(token)) != 1 || !found.Usable(now) {
		return nil, model.ErrLinkInvalid
	}
	if found.Settings.RequirePassword {
		if password == "" || bcrypt.CompareHashAndPassword(found.PasswordHash, []byte(password)) != nil {
			return nil, model.ErrLinkInvalid
		}
	}
	return found, nil
}

func hasExpired(item *model.ContentItem, now time.Time) bool {
	for _, l := range item.ReviewLinks {
		if l.IsActive && !l.ExpiresAt.After(now) {
			return true
		}
	}
	return false
}

func redact(l *model.ClientReviewLink) *model.ClientReviewLink {
	ret := l.Clone()
	ret.PasswordHash = nil
	return ret
}

func (m *Manager) url(token string) string {
	return strings.TrimRight(m.config.BaseURL, "/") + "/" + token
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (m *Manager) index(itemID string, l *model.ClientReviewLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[tokenKey(l.Token)] = ref{itemID: itemID, linkID: l.ID}
	m.byLink[l.ID] = itemID
}

// discover looks links up in the repository on an index miss, so links
// issued by another manager over the same store still resolve.
func (m *Manager) discover(ctx context.Context, parameter *dao.Parameter) error {
	items, err := m.store.List(ctx, parameter)
	if err != nil {
		return fmt.Errorf("failed to look up review link: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		for _, l := range item.ReviewLinks {
			m.byToken[tokenKey(l.Token)] = ref{itemID: item.ID, linkID: l.ID}
			m.byLink[l.ID] = item.ID
		}
	}
	return nil
}

func (m *Manager) cachedToken(token string) (ref, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byToken[tokenKey(token)]
	return r, ok
}

func (m *Manager) cachedLink(linkID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	itemID, ok := m.byLink[linkID]
	return itemID, ok
}

func (m *Manager) lookupToken(ctx context.Context, token string) (ref, bool) {
	if token == "" {
		return ref{}, false
	}
	if r, ok := m.cachedToken(token); ok {
		return r, true
	}
	if err := m.discover(ctx, criteria.ByLinkToken(token)); err != nil {
		m.logger.WithError(err).Warn("review link lookup failed")
		return ref{}, false
	}
	return m.cachedToken(token)
}

func (m *Manager) itemOf(ctx context.Context, linkID string) (string, error) {
	if linkID == "" {
		return "", validation.Failf("link id is required")
	}
	if itemID, ok := m.cachedLink(linkID); ok {
		return itemID, nil
	}
	if err := m.discover(ctx, criteria.ByLinkID(linkID)); err != nil {
		return "", err
	}
	itemID, ok := m.cachedLink(linkID)
	if !ok {
		return "", fmt.Errorf("link %s: %w", linkID, model.ErrNotFound)
	}
	return itemID, nil
}
