package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"shrtn/internal/apperror"
	"shrtn/internal/metrics"
	"shrtn/internal/models"
	"shrtn/internal/repository"
	"shrtn/pkg/utils"

	"go.uber.org/zap"
)

const DefaultAliasAttempts = 10

var (
	ErrLinkNotFound        = apperror.New(apperror.NotFound, "alias not found")
	ErrAliasExhausted      = apperror.New(apperror.ServiceUnavailable, "no free alias available, try again later")
	ErrOriginalURLRequired = apperror.New(apperror.Validation, "original url is required")
	ErrOriginalURLTooLong  = apperror.New(apperror.Validation, fmt.Sprintf("original url must be at most %d characters", models.MaxOriginalURLLength))
)

type ShortenerService struct {
	store         *repository.Store
	cache         *LinkCache
	metrics       *metrics.Metrics
	logger        *zap.Logger
	maxAttempts   int
	codeGenerator func(int) string
	now           func() time.Time
}

func NewShortenerService(store *repository.Store, cache *LinkCache, m *metrics.Metrics, logger *zap.Logger, maxAttempts int) *ShortenerService {
	if maxAttempts < 1 {
		maxAttempts = DefaultAliasAttempts
	}
	return &ShortenerService{
		store:         store,
		cache:         cache,
		metrics:       m,
		logger:        logger,
		maxAttempts:   maxAttempts,
		codeGenerator: utils.GenerateShortCode,
		now:           time.Now,
	}
}

// SetCodeGenerator replaces the alias source, e.g. to pin aliases in tests.
func (s *ShortenerService) SetCodeGenerator(gen func(int) string) {
	s.codeGenerator = gen
}

// CreateLink stores originalURL under a fresh alias owned by userID.
// Candidates that already exist, or lose an insert race to another
// request, are retried up to maxAttempts times before ErrAliasExhausted.
func (s *ShortenerService) CreateLink(ctx context.Context, userID uint, originalURL string) (*models.Link, error) {
	originalURL = strings.TrimSpace(originalURL)
	if originalURL == "" {
		return nil, ErrOriginalURLRequired
	}
	if utf8.RuneCountInString(originalURL) > models.MaxOriginalURLLength {
		return nil, ErrOriginalURLTooLong
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		alias := s.codeGenerator(models.AliasLength)

		taken, err := s.store.Links.ExistsShortURL(ctx, alias)
		if err != nil {
			return nil, fmt.Errorf("check alias %q: %w", alias, err)
		}
		if taken {
			s.collision(alias, attempt)
			continue
		}

		link := &models.Link{
			OriginalURL: originalURL,
			ShortURL:    alias,
			UserID:      userID,
			DateCreated: s.now(),
		}
		err = s.store.Links.Create(ctx, link)
		if errors.Is(err, repository.ErrDuplicate) {
			s.collision(alias, attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create link: %w", err)
		}

		s.metrics.LinksCreated.Inc()
		s.logger.Info("link created",
			zap.Uint("user_id", userID),
			zap.String("alias", alias),
			zap.Int("attempt", attempt),
		)
		return link, nil
	}

	s.logger.Error("alias keyspace exhausted", zap.Int("attempts", s.maxAttempts))
	return nil, ErrAliasExhausted
}

func (s *ShortenerService) collision(alias string, attempt int) {
	s.metrics.AliasCollisions.Inc()
	s.logger.Debug("alias collision", zap.String("alias", alias), zap.Int("attempt", attempt))
}

// Resolve returns the destination of alias and counts the visit.
func (s *ShortenerService) Resolve(ctx context.Context, alias string) (string, error) {
	if !utils.IsShortCode(alias, models.AliasLength) {
		s.metrics.Redirects.WithLabelValues("not_found").Inc()
		return "", ErrLinkNotFound
	}

	entry, hit := s.cache.Get(ctx, alias)
	if !hit {
		link, err := s.store.Links.FindByShortURL(ctx, alias)
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.Redirects.WithLabelValues("not_found").Inc()
			return "", ErrLinkNotFound.Wrap(err)
		}
		if err != nil {
			return "", fmt.Errorf("find alias %q: %w", alias, err)
		}
		s.cache.Set(ctx, link)
		entry = CachedLink{ID: link.ID, OriginalURL: link.OriginalURL}
	}

	if err := s.store.Links.IncrementVisits(ctx, entry.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.cache.Delete(ctx, alias)
			s.metrics.Redirects.WithLabelValues("not_found").Inc()
			return "", ErrLinkNotFound.Wrap(err)
		}
		return "", fmt.Errorf("count visit for %q: %w", alias, err)
	}

	s.metrics.Redirects.WithLabelValues("found").Inc()
	return entry.OriginalURL, nil
}

func (s *ShortenerService) ListLinks(ctx context.Context, userID uint) ([]models.Link, error) {
	links, err := s.store.Links.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}
