package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"kerya/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	Update(ctx context.Context, listing *Listing) error
	List(ctx context.Context, query ListingListQuery) ([]Listing, int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.FromIntegrity(err)
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var listing Listing
	err := r.db.WithContext(ctx).
		Preload("HouseDetail").
		Preload("HotelDetail").
		Preload("EventDetail").
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "listing not found")
		}
		return nil, err
	}
	return &listing, nil
}

func (r *repository) Update(ctx context.Context, listing *Listing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing.UpdatedAt = time.Now()
		if err := tx.Save(listing).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.FromIntegrity(err)
			}
			return err
		}
		if listing.HouseDetail != nil {
			if err := tx.Save(listing.HouseDetail).Error; err != nil {
				return err
			}
		}
		if listing.HotelDetail != nil {
			if err := tx.Save(listing.HotelDetail).Error; err != nil {
				return err
			}
		}
		if listing.EventDetail != nil {
			if err := tx.Save(listing.EventDetail).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) List(ctx context.Context, query ListingListQuery) ([]Listing, int64, error) {
	var results []Listing
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Listing{})

	if !query.IncludeDeleted {
		baseQuery = baseQuery.Where("status <> ?", StatusDeleted)
	}
	if query.Type != "" {
		baseQuery = baseQuery.Where("type = ?", query.Type)
	}
	if query.Wilaya != "" {
		baseQuery = baseQuery.Where("wilaya = ?", query.Wilaya)
	}
	if query.OwnerID != "" {
		if ownerID, err := uuid.Parse(query.OwnerID); err == nil {
			baseQuery = baseQuery.Where("owner_id = ?", ownerID)
		}
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("HouseDetail").
		Preload("HotelDetail").
		Preload("EventDetail").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&results).Error

	return results, totalCount, err
}

// SoftDelete flips the status flag; listing rows are never physically removed.
func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     StatusDeleted,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "listing not found")
	}
	return nil
}

// isUniqueViolation detects postgres unique constraint errors (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
