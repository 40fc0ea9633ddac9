package feedback

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/samadammeek/core-geonetwork/internal/domain"
	"github.com/samadammeek/core-geonetwork/internal/metrics"
	"github.com/samadammeek/core-geonetwork/internal/repository"
)

var (
	// ErrNotFound is returned when a feedback does not exist or is hidden from the caller.
	ErrNotFound = errors.New("feedback: not found")
	// ErrInvalid is returned when a feedback fails validation.
	ErrInvalid = errors.New("feedback: invalid")
)

const maxCommentLength = 4000

// Store persists user feedback. *repository.FeedbackRepository satisfies it.
type Store interface {
	Create(ctx context.Context, fb domain.UserFeedback) (domain.UserFeedback, error)
	Get(ctx context.Context, uuid string, publishedOnly bool) (domain.UserFeedback, error)
	List(ctx context.Context, filters repository.FeedbackListFilters) ([]domain.UserFeedback, error)
	Delete(ctx context.Context, uuid string) error
	Publish(ctx context.Context, uuid string, approverID *string) (domain.UserFeedback, error)
}

// Service implements the user feedback operations.
type Service struct {
	store     Store
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService builds a Service on top of store.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Save validates and stores a new feedback. A uuid and creation date are
// assigned when absent.
func (s *Service) Save(ctx context.Context, fb domain.UserFeedback) (domain.UserFeedback, error) {
	if fb.UUID == "" {
		fb.UUID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = s.now()
	}
	if fb.Status == "" {
		fb.Status = domain.StatusDraft
	}
	fb.Comment = s.plainText(fb.Comment)
	fb.Author.Name = s.plainText(fb.Author.Name)
	fb.Author.Organization = s.plainText(fb.Author.Organization)
	fb.Keywords = s.cleanKeywords(fb.Keywords)

	if err := validate(fb); err != nil {
		metrics.ObserveOperation("create", err)
		return domain.UserFeedback{}, err
	}

	if fb.ParentUUID != nil {
		if _, err := s.store.Get(ctx, *fb.ParentUUID, false); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				err = fmt.Errorf("%w: parent feedback %s does not exist", ErrInvalid, *fb.ParentUUID)
			}
			metrics.ObserveOperation("create", err)
			return domain.UserFeedback{}, err
		}
	}

	saved, err := s.store.Create(ctx, fb)
	metrics.ObserveOperation("create", err)
	if err != nil {
		return domain.UserFeedback{}, fmt.Errorf("store feedback: %w", err)
	}
	s.logger.Debug().Str("uuid", saved.UUID).Str("metadata", saved.MetadataUUID).Str("status", string(saved.Status)).Msg("feedback saved")
	return saved, nil
}

// Remove deletes a feedback.
func (s *Service) Remove(ctx context.Context, uuid string) error {
	err := s.store.Delete(ctx, uuid)
	metrics.ObserveOperation("delete", err)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("remove feedback %s: %w", uuid, err)
	}
	s.logger.Debug().Str("uuid", uuid).Msg("feedback removed")
	return nil
}

// Get returns one feedback. With publishedOnly set, drafts are reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, uuid string, publishedOnly bool) (domain.UserFeedback, error) {
	fb, err := s.store.Get(ctx, uuid, publishedOnly)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.UserFeedback{}, ErrNotFound
		}
		return domain.UserFeedback{}, fmt.Errorf("get feedback %s: %w", uuid, err)
	}
	return fb, nil
}

// ListForRecord returns up to size feedback attached to a metadata record,
// newest first. A non-positive size means no limit.
func (s *Service) ListForRecord(ctx context.Context, metadataUUID string, size int, publishedOnly bool) ([]domain.UserFeedback, error) {
	items, err := s.store.List(ctx, repository.FeedbackListFilters{
		MetadataUUID:  &metadataUUID,
		PublishedOnly: publishedOnly,
		Limit:         size,
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback for %s: %w", metadataUUID, err)
	}
	return items, nil
}

// List returns up to size feedback across all records, newest first.
func (s *Service) List(ctx context.Context, size int, publishedOnly bool) ([]domain.UserFeedback, error) {
	items, err := s.store.List(ctx, repository.FeedbackListFilters{
		PublishedOnly: publishedOnly,
		Limit:         size,
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// Publish makes a feedback visible to everyone and records who approved it.
func (s *Service) Publish(ctx context.Context, uuid string, approver *domain.Principal) error {
	var approverID *string
	if approver != nil {
		id := approver.ID
		approverID = &id
	}
	_, err := s.store.Publish(ctx, uuid, approverID)
	metrics.ObserveOperation("publish", err)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("publish feedback %s: %w", uuid, err)
	}
	s.logger.Debug().Str("uuid", uuid).Msg("feedback published")
	return nil
}

func (s *Service) cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = s.plainText(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// plainText strips markup and returns the remaining text unescaped. Values are
// stored as plain text and escaped by whichever layer renders them.
func (s *Service) plainText(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}

func validate(fb domain.UserFeedback) error {
	if strings.TrimSpace(fb.MetadataUUID) == "" {
		return fmt.Errorf("%w: metadata uuid is required", ErrInvalid)
	}
	if fb.Status != domain.StatusDraft && fb.Status != domain.StatusPublished {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, fb.Status)
	}
	if utf8.RuneCountInString(fb.Comment) > maxCommentLength {
		return fmt.Errorf("%w: comment exceeds %d characters", ErrInvalid, maxCommentLength)
	}
	if fb.Comment == "" && len(fb.Ratings) == 0 {
		return fmt.Errorf("%w: a comment or a rating is required", ErrInvalid)
	}
	for criterion, value := range fb.Ratings {
		if _, ok := domain.Criteria[criterion]; !ok {
			return fmt.Errorf("%w: unknown rating criterion %d", ErrInvalid, criterion)
		}
		if value < domain.MinRating || value > domain.MaxRating {
			return fmt.Errorf("%w: rating for %s must be between %d and %d", ErrInvalid, domain.Criteria[criterion], domain.MinRating, domain.MaxRating)
		}
	}
	return nil
}
