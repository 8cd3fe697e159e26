package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kerya/internal/access"
	"kerya/internal/shared/apperrors"
	"kerya/pkg/cache"

	"github.com/google/uuid"
)

type Service interface {
	CreateListing(ctx context.Context, actor access.Actor, req CreateListingRequest) (*Listing, error)
	GetListingByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	UpdateListing(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateListingRequest) (*Listing, error)
	DeleteListing(ctx context.Context, actor access.Actor, id uuid.UUID) error
	GetListings(ctx context.Context, query ListingListQuery) ([]Listing, int64, error)

	// SetCacheService injects the optional cache dependency.
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	cacheTTL     time.Duration
}

func NewService(repo Repository) Service {
	return &service{repo: repo, cacheTTL: 10 * time.Minute}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateListing(ctx context.Context, actor access.Actor, req CreateListingRequest) (*Listing, error) {
	listingType := Type(req.Type)
	if err := validateDetailMatchesType(listingType, req.HouseDetail, req.HotelDetail, req.EventDetail); err != nil {
		return nil, err
	}
	if listingType.IsLodging() && req.PricePerNight.Sign() <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "price_per_night must be positive for lodging listings")
	}

	currency := req.Currency
	if currency == "" {
		currency = "DZD"
	}

	listing := &Listing{
		OwnerID:       actor.ID,
		Type:          listingType,
		Title:         req.Title,
		Slug:          normalizeSlug(req.Slug),
		Description:   req.Description,
		Wilaya:        req.Wilaya,
		Municipality:  req.Municipality,
		PostalCode:    req.PostalCode,
		Lat:           req.Lat,
		Lng:           req.Lng,
		Status:        StatusDraft,
		Capacity:      req.Capacity,
		PricePerNight: req.PricePerNight,
		Currency:      currency,
	}
	applyDetailRequests(listing, req.HouseDetail, req.HotelDetail, req.EventDetail)

	if listing.Slug == "" {
		listing.Slug = uuid.New().String()
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return listing, nil
}

func (s *service) GetListingByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	if s.cacheService != nil {
		var cached Listing
		key := cache.ListingKey(id.String())
		if err := s.cacheService.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cache.ListingKey(id.String()), listing, s.cacheTTL)
	}
	return listing, nil
}

func (s *service) UpdateListing(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateListingRequest) (*Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireListingOwner(actor, listing.OwnerID); err != nil {
		return nil, err
	}
	if listing.IsDeleted() {
		return nil, apperrors.New(apperrors.KindValidation, "cannot update a deleted listing")
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Wilaya != nil {
		listing.Wilaya = *req.Wilaya
	}
	if req.Municipality != nil {
		listing.Municipality = *req.Municipality
	}
	if req.PostalCode != nil {
		listing.PostalCode = *req.PostalCode
	}
	if req.Status != nil {
		listing.Status = Status(*req.Status)
	}
	if req.Capacity != nil {
		listing.Capacity = *req.Capacity
	}
	if req.PricePerNight != nil {
		if listing.Type.IsLodging() && req.PricePerNight.Sign() <= 0 {
			return nil, apperrors.New(apperrors.KindValidation, "price_per_night must be positive for lodging listings")
		}
		listing.PricePerNight = *req.PricePerNight
	}
	applyDetailRequests(listing, req.HouseDetail, req.HotelDetail, req.EventDetail)

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	s.invalidate(ctx, id)
	return listing, nil
}

func (s *service) DeleteListing(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireListingOwner(actor, listing.OwnerID); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *service) GetListings(ctx context.Context, query ListingListQuery) ([]Listing, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cacheService != nil {
		_ = s.cacheService.Delete(ctx, cache.ListingKey(id.String()))
	}
}

// validateDetailMatchesType rejects a detail record of the wrong kind; the
// matching detail may be omitted (created empty later) but a mismatched one is
// always an input error.
func validateDetailMatchesType(t Type, house *HouseDetailRequest, hotel *HotelDetailRequest, event *EventDetailRequest) error {
	if !t.IsValid() {
		return apperrors.Newf(apperrors.KindValidation, "invalid listing type %q", t)
	}
	if house != nil && t != TypeHouse {
		return apperrors.New(apperrors.KindValidation, "house_detail only allowed for house listings")
	}
	if hotel != nil && t != TypeHotel {
		return apperrors.New(apperrors.KindValidation, "hotel_detail only allowed for hotel listings")
	}
	if event != nil && t != TypeEvent {
		return apperrors.New(apperrors.KindValidation, "event_detail only allowed for event listings")
	}
	return nil
}

func applyDetailRequests(listing *Listing, house *HouseDetailRequest, hotel *HotelDetailRequest, event *EventDetailRequest) {
	if house != nil {
		if listing.HouseDetail == nil {
			listing.HouseDetail = &HouseDetail{ListingID: listing.ID}
		}
		d := listing.HouseDetail
		d.HouseType = house.HouseType
		d.Rooms = house.Rooms
		d.Bathrooms = house.Bathrooms
		d.Furnished = house.Furnished
		if house.Amenities != "" {
			d.Amenities = house.Amenities
		}
		if house.Rules != "" {
			d.Rules = house.Rules
		}
		if house.MinStay > 0 {
			d.MinStay = house.MinStay
		}
		if house.ContractRequired != "" {
			d.ContractRequired = house.ContractRequired
		}
	}
	if hotel != nil {
		if listing.HotelDetail == nil {
			listing.HotelDetail = &HotelDetail{ListingID: listing.ID}
		}
		d := listing.HotelDetail
		d.HotelType = hotel.HotelType
		d.Stars = hotel.Stars
		if hotel.Services != "" {
			d.Services = hotel.Services
		}
		d.ContactPhone = hotel.ContactPhone
		d.ContactEmail = hotel.ContactEmail
	}
	if event != nil {
		if listing.EventDetail == nil {
			listing.EventDetail = &EventDetail{ListingID: listing.ID}
		}
		d := listing.EventDetail
		d.EventType = event.EventType
		if !event.DateStart.IsZero() {
			d.DateStart = event.DateStart
		}
		d.DateEnd = event.DateEnd
		d.FamilyFriendly = event.FamilyFriendly
		if event.GenderPreference != "" {
			d.GenderPreference = event.GenderPreference
		}
		if event.ContactInfo != "" {
			d.ContactInfo = event.ContactInfo
		}
	}
}

func normalizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	return strings.ReplaceAll(slug, " ", "-")
}
