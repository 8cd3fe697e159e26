package listings

import (
	"time"

	"kerya/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is a bookable unit (house, hotel room class, or event) owned by a
// host. Listings are soft-deleted via Status; rows are never removed.
type Listing struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID      uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Type         Type      `gorm:"type:varchar(10);not null;check:type IN ('house','hotel','event')" json:"type"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Slug         string    `gorm:"uniqueIndex;size:120" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	Wilaya       string    `gorm:"size:50" json:"wilaya"`
	Municipality string    `gorm:"size:50" json:"municipality"`
	PostalCode   string    `gorm:"size:10" json:"postal_code,omitempty"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Status       Status    `gorm:"type:varchar(20);default:'draft';check:status IN ('draft','active','hidden','deleted')" json:"status"`
	Capacity     int       `gorm:"not null" json:"capacity"`
	// Nightly rate for lodging listings; zero for events (priced per ticket type).
	PricePerNight decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"price_per_night"`
	Currency      string          `gorm:"size:10;default:'DZD'" json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Owner       *users.User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;"`
	HouseDetail *HouseDetail `json:"house_detail,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
	HotelDetail *HotelDetail `json:"hotel_detail,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
	EventDetail *EventDetail `json:"event_detail,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
}

// HouseDetail carries house-specific attributes of a listing.
type HouseDetail struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"listing_id"`
	HouseType        string    `gorm:"size:20" json:"house_type"` // Studio, F1..F6
	Rooms            int       `json:"rooms"`
	Bathrooms        int       `json:"bathrooms"`
	Furnished        bool      `gorm:"default:false" json:"furnished"`
	Amenities        string    `gorm:"type:jsonb;default:'{}'" json:"amenities"`
	Rules            string    `gorm:"type:jsonb;default:'{}'" json:"rules"`
	MinStay          int       `gorm:"default:1" json:"min_stay"`
	ContractRequired string    `gorm:"size:20;default:'none';check:contract_required IN ('none','mandatory','optional')" json:"contract_required"`
}

// HotelDetail carries hotel-specific attributes of a listing.
type HotelDetail struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"listing_id"`
	HotelType    string    `gorm:"size:20" json:"hotel_type"` // Hotel, Hostel, Palace
	Stars        int       `gorm:"default:0" json:"stars"`
	Services     string    `gorm:"type:jsonb;default:'{}'" json:"services"`
	ContactPhone string    `gorm:"size:20" json:"contact_phone"`
	ContactEmail string    `gorm:"size:255" json:"contact_email"`
}

// EventDetail carries event-specific attributes of a listing.
type EventDetail struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"listing_id"`
	EventType        string     `gorm:"size:50" json:"event_type"`
	DateStart        time.Time  `json:"date_start"`
	DateEnd          *time.Time `json:"date_end,omitempty"`
	FamilyFriendly   bool       `gorm:"default:false" json:"family_friendly"`
	GenderPreference string     `gorm:"size:10;default:'mixed';check:gender_preference IN ('mixed','male','female')" json:"gender_preference"`
	ContactInfo      string     `gorm:"type:jsonb;default:'{}'" json:"contact_info"`
}

func (Listing) TableName() string {
	return "listings"
}

func (HouseDetail) TableName() string {
	return "house_details"
}

func (HotelDetail) TableName() string {
	return "hotel_details"
}

func (EventDetail) TableName() string {
	return "event_details"
}

// IsBookable reports whether new bookings or ticket sales may target the
// listing.
func (l *Listing) IsBookable() bool {
	return l.Status == StatusActive
}

func (l *Listing) IsDeleted() bool {
	return l.Status == StatusDeleted
}

// CreateListingRequest covers the listing fields common to all three types.
type CreateListingRequest struct {
	Type          string          `json:"type" binding:"required,oneof=house hotel event"`
	Title         string          `json:"title" binding:"required,min=3,max=100"`
	Slug          string          `json:"slug" binding:"omitempty,max=120"`
	Description   string          `json:"description" binding:"max=5000"`
	Wilaya        string          `json:"wilaya" binding:"required,max=50"`
	Municipality  string          `json:"municipality" binding:"required,max=50"`
	PostalCode    string          `json:"postal_code" binding:"omitempty,max=10"`
	Lat           float64         `json:"lat"`
	Lng           float64         `json:"lng"`
	Capacity      int             `json:"capacity" binding:"required,min=1"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Currency      string          `json:"currency" binding:"omitempty,max=10"`

	HouseDetail *HouseDetailRequest `json:"house_detail,omitempty"`
	HotelDetail *HotelDetailRequest `json:"hotel_detail,omitempty"`
	EventDetail *EventDetailRequest `json:"event_detail,omitempty"`
}

type UpdateListingRequest struct {
	Title         *string          `json:"title" binding:"omitempty,min=3,max=100"`
	Description   *string          `json:"description" binding:"omitempty,max=5000"`
	Wilaya        *string          `json:"wilaya" binding:"omitempty,max=50"`
	Municipality  *string          `json:"municipality" binding:"omitempty,max=50"`
	PostalCode    *string          `json:"postal_code" binding:"omitempty,max=10"`
	Status        *string          `json:"status" binding:"omitempty,oneof=draft active hidden"`
	Capacity      *int             `json:"capacity" binding:"omitempty,min=1"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`

	HouseDetail *HouseDetailRequest `json:"house_detail,omitempty"`
	HotelDetail *HotelDetailRequest `json:"hotel_detail,omitempty"`
	EventDetail *EventDetailRequest `json:"event_detail,omitempty"`
}

type HouseDetailRequest struct {
	HouseType        string `json:"house_type" binding:"omitempty,max=20"`
	Rooms            int    `json:"rooms" binding:"omitempty,min=0"`
	Bathrooms        int    `json:"bathrooms" binding:"omitempty,min=0"`
	Furnished        bool   `json:"furnished"`
	Amenities        string `json:"amenities"`
	Rules            string `json:"rules"`
	MinStay          int    `json:"min_stay" binding:"omitempty,min=1"`
	ContractRequired string `json:"contract_required" binding:"omitempty,oneof=none mandatory optional"`
}

type HotelDetailRequest struct {
	HotelType    string `json:"hotel_type" binding:"omitempty,max=20"`
	Stars        int    `json:"stars" binding:"omitempty,min=0,max=5"`
	Services     string `json:"services"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=20"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

type EventDetailRequest struct {
	EventType        string     `json:"event_type" binding:"omitempty,max=50"`
	DateStart        time.Time  `json:"date_start"`
	DateEnd          *time.Time `json:"date_end,omitempty"`
	FamilyFriendly   bool       `json:"family_friendly"`
	GenderPreference string     `json:"gender_preference" binding:"omitempty,oneof=mixed male female"`
	ContactInfo      string     `json:"contact_info"`
}

// ListingListQuery filters listing lookups.
type ListingListQuery struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Type           string `form:"type" binding:"omitempty,oneof=house hotel event"`
	Wilaya         string `form:"wilaya"`
	OwnerID        string `form:"owner_id" binding:"omitempty,uuid"`
	IncludeDeleted bool   `form:"include_deleted"`
}
