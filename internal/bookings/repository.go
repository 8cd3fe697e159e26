package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"kerya/internal/listings"
	"kerya/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// CreateIfAvailable inserts a booking after re-checking date availability
	// under a row lock on the listing, so two concurrent requests for
	// overlapping ranges serialize instead of both passing the check.
	CreateIfAvailable(ctx context.Context, booking *Booking) error

	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Transition locks the booking row, applies mutate to the fresh state and
	// persists with derived fields recomputed. The read and the write share
	// one lock, so a concurrent accept+cancel cannot lose an update.
	Transition(ctx context.Context, id uuid.UUID, mutate func(*Booking) error) (*Booking, error)

	GetGuestBookings(ctx context.Context, guestID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetListingBookings(ctx context.Context, listingID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// lockForUpdate adds a SELECT ... FOR UPDATE row lock to the query.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repository) CreateIfAvailable(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the listing row so concurrent bookings for the same listing
		// serialize here before any availability check runs.
		var listing listings.Listing
		err := lockForUpdate(tx).
			Where("id = ?", booking.ListingID).
			First(&listing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "listing not found")
			}
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		if !listing.IsBookable() {
			return apperrors.New(apperrors.KindValidation, "listing is not available for booking")
		}
		if !listing.Type.IsLodging() {
			return apperrors.Newf(apperrors.KindValidation, "listing of type %s cannot be booked by date range", listing.Type)
		}

		// 2. Half-open overlap test against live bookings, inside the same
		// transaction as the insert.
		var overlapping int64
		err = tx.Model(&Booking{}).
			Where("listing_id = ?", booking.ListingID).
			Where("status IN ?", []Status{StatusRequested, StatusAccepted}).
			Where("start_date < ? AND end_date > ?", booking.EndDate, booking.StartDate).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}
		if overlapping > 0 {
			return apperrors.New(apperrors.KindAvailabilityConflict, "listing is not available for the selected dates")
		}

		// 3. Derived fields come from the locked listing, never from input.
		booking.Recompute(listing.PricePerNight)

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Guest").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, mutate func(*Booking) error) (*Booking, error) {
	var result *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		err := lockForUpdate(tx).
			Where("id = ?", id).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "booking not found")
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		var listing listings.Listing
		if err := tx.Where("id = ?", booking.ListingID).First(&listing).Error; err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}

		if err := mutate(&booking); err != nil {
			return err
		}

		booking.Recompute(listing.PricePerNight)
		booking.UpdatedAt = time.Now()
		if err := tx.Save(&booking).Error; err != nil {
			return fmt.Errorf("failed to persist booking: %w", err)
		}

		booking.Listing = &listing
		result = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) GetGuestBookings(ctx context.Context, guestID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&Booking{}).Where("guest_id = ?", guestID)
	return r.paginate(base, query)
}

func (r *repository) GetListingBookings(ctx context.Context, listingID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&Booking{}).Where("listing_id = ?", listingID)
	return r.paginate(base, query)
}

func (r *repository) paginate(base *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	var results []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	if query.Status != "" {
		base = base.Where("status = ?", query.Status)
	}
	if query.ListingID != "" {
		if listingID, err := uuid.Parse(query.ListingID); err == nil {
			base = base.Where("listing_id = ?", listingID)
		}
	}

	if err := base.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := base.
		Preload("Listing").
		Preload("Guest").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&results).Error

	return results, totalCount, err
}

// CalculateTotalPages is a helper for paginated responses.
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
