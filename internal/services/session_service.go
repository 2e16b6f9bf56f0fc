package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	apierrors "churnmail/internal/errors"
	"churnmail/internal/session"
	"churnmail/pkg/contracts/domain"
)

// SessionService exposes the per-operator category allow-list. Sessions
// are created on first use: every method accepts a possibly empty or
// expired id and returns the id that is actually live afterwards.
type SessionService struct {
	store  *session.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionService creates a session service over the given store.
func NewSessionService(store *session.Store, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Defaults returns the fixed built-in category list.
func (s *SessionService) Defaults() domain.CategoryList {
	return domain.CategoryList{
		Categories: session.DefaultCategories(),
		Builtin:    true,
	}
}

// Categories returns the allow-list of the session, creating a fresh one
// seeded with the built-in defaults when id is empty or expired.
func (s *SessionService) Categories(ctx context.Context, id string) (string, domain.CategoryList) {
	if id != "" {
		if categories, ok := s.store.Get(id); ok {
			return id, s.categoryList(categories)
		}
	}

	newID, categories := s.store.Create()
	s.logger.InfoContext(ctx, "session created",
		slog.String("session_id", newID))
	return newID, s.categoryList(categories)
}

// Update replaces the session allow-list. Entries are trimmed and blanks
// dropped; an update that leaves nothing is rejected. The session is
// created first when id is empty or expired.
func (s *SessionService) Update(ctx context.Context, id string, categories []string) (string, domain.CategoryList, error) {
	cleaned := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return "", domain.CategoryList{}, apierrors.ErrEmptyCategories
	}

	if id == "" || !s.store.Set(id, cleaned) {
		newID, _ := s.store.Create()
		s.store.Set(newID, cleaned)
		s.logger.InfoContext(ctx, "session created",
			slog.String("session_id", newID))
		id = newID
	}

	s.logger.InfoContext(ctx, "session categories updated",
		slog.String("session_id", id),
		slog.Int("categories", len(cleaned)))

	list := s.categoryList(cleaned)
	now := s.now()
	list.UpdatedAt = &now
	return id, list, nil
}

// Restore resets the session allow-list to the built-in defaults, creating
// the session when needed.
func (s *SessionService) Restore(ctx context.Context, id string) (string, domain.CategoryList) {
	categories, ok := s.store.Restore(id)
	if !ok {
		id, categories = s.store.Create()
		s.logger.InfoContext(ctx, "session created",
			slog.String("session_id", id))
	}

	s.logger.InfoContext(ctx, "session categories restored",
		slog.String("session_id", id))

	list := s.categoryList(categories)
	now := s.now()
	list.UpdatedAt = &now
	return id, list
}

// categoryList wraps a raw list, flagging it when it still equals the
// built-in defaults.
func (s *SessionService) categoryList(categories []string) domain.CategoryList {
	return domain.CategoryList{
		Categories: categories,
		Builtin:    slices.Equal(categories, session.DefaultCategories()),
	}
}
