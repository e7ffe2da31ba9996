package repository

import (
	"context"

	"shrtn/internal/models"

	"gorm.io/gorm"
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	FindByShortURL(ctx context.Context, shortURL string) (*models.Link, error)
	ExistsShortURL(ctx context.Context, shortURL string) (bool, error)
	IncrementVisits(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint) ([]models.Link, error)
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r *linkRepository) FindByShortURL(ctx context.Context, shortURL string) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Where("short_url = ?", shortURL).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *linkRepository) ExistsShortURL(ctx context.Context, shortURL string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Link{}).Where("short_url = ?", shortURL).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// IncrementVisits adds one visit in a single UPDATE so concurrent
// redirects never lose increments.
func (r *linkRepository) IncrementVisits(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ?", id).
		UpdateColumn("visits", gorm.Expr("visits + ?", 1))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *linkRepository) ListByUser(ctx context.Context, userID uint) ([]models.Link, error) {
	var links []models.Link
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_created ASC").
		Order("id ASC").
		Find(&links).Error; err != nil {
		return nil, translate(err)
	}
	return links, nil
}
