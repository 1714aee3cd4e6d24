// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wishwall/wishwall/internal/messages"
	"github.com/wishwall/wishwall/internal/metrics"
	"github.com/wishwall/wishwall/internal/model"
)

// WishStore is the subset of the message store the service uses.
type WishStore interface {
	Create(ctx context.Context, name, message string) (*model.Wish, error)
	ListApproved(ctx context.Context) ([]*model.Wish, error)
	ListAll(ctx context.Context) ([]*model.Wish, error)
	Approve(ctx context.Context, id string) (*model.Wish, error)
	Delete(ctx context.Context, id string) error
}

// SubmissionTracker counts stored submissions.
type SubmissionTracker interface {
	TrackMessageSubmission(ctx context.Context)
}

// SubmissionNotifier is told about each stored submission. It must not block.
type SubmissionNotifier interface {
	WishSubmitted(ctx context.Context, wish *model.Wish)
}

// SubmitInput defines input for submitting a wish.
type SubmitInput struct {
	Name    string
	Message string
}

// ModerateInput defines input for a moderation action.
type ModerateInput struct {
	ID     string
	Action string
}

// WishService handles wish business logic.
type WishService struct {
	store      WishStore
	moderation *Moderation
	tracker    SubmissionTracker
	notifier   SubmissionNotifier
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewWishService creates a new WishService.
func NewWishService(store WishStore, tracker SubmissionTracker, recorder metrics.Recorder, logger *slog.Logger) *WishService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "wishes")
	return &WishService{
		store:      store,
		moderation: NewModeration(store, logger),
		tracker:    tracker,
		metrics:    recorder,
		logger:     logger,
	}
}

// SetNotifier registers a notifier for new submissions.
func (s *WishService) SetNotifier(n SubmissionNotifier) {
	s.notifier = n
}

// Moderation returns the admin-side wish cache.
func (s *WishService) Moderation() *Moderation {
	return s.moderation
}

// Submit validates and stores a new wish. New wishes are never approved.
func (s *WishService) Submit(ctx context.Context, input SubmitInput) (*model.Wish, error) {
	name, message, err := ValidateWish(input.Name, input.Message)
	if err != nil {
		s.metrics.IncWishSubmitted(metrics.StatusInvalid)
		return nil, err
	}

	wish, err := s.store.Create(ctx, name, message)
	if err != nil {
		s.metrics.IncWishSubmitted(metrics.StatusFailed)
		return nil, err
	}

	if s.tracker != nil {
		s.tracker.TrackMessageSubmission(ctx)
	}
	if s.notifier != nil {
		s.notifier.WishSubmitted(ctx, wish)
	}
	s.metrics.IncWishSubmitted(metrics.StatusSuccess)
	s.logger.Info("wish submitted", "id", wish.ID)
	return wish, nil
}

// ListPublic returns approved wishes.
func (s *WishService) ListPublic(ctx context.Context) ([]*model.Wish, error) {
	return s.store.ListApproved(ctx)
}

// ListAll returns every wish and refreshes the moderation cache.
func (s *WishService) ListAll(ctx context.Context) ([]*model.Wish, error) {
	return s.moderation.Refresh(ctx)
}

// Moderate applies an admin action. Approve returns the updated wish;
// delete returns nil.
func (s *WishService) Moderate(ctx context.Context, input ModerateInput) (*model.Wish, error) {
	id := strings.TrimSpace(input.ID)
	action := model.ModerationAction(strings.TrimSpace(input.Action))

	if id == "" || action == "" {
		verr := &ValidationError{}
		if id == "" {
			verr.add("id", "Message ID is required")
		}
		if action == "" {
			verr.add("action", "Action is required")
		}
		return nil, verr
	}
	if !action.IsValid() {
		verr := &ValidationError{}
		verr.add("action", "Invalid action %q", string(action))
		return nil, verr
	}

	var (
		wish *model.Wish
		err  error
	)
	switch action {
	case model.ActionApprove:
		wish, err = s.moderation.Approve(ctx, id)
	case model.ActionDelete:
		err = s.moderation.Delete(ctx, id)
	}
	if err != nil {
		if !errors.Is(err, messages.ErrNotFound) {
			s.logger.Error("moderation failed", "id", id, "action", action, "error", err)
		}
		return nil, err
	}

	s.metrics.IncWishModerated(string(action))
	s.logger.Info("wish moderated", "id", id, "action", action)
	return wish, nil
}
