package database

import (
	"kerya/internal/bookings"
	"kerya/internal/listings"
	"kerya/internal/tickets"
	"kerya/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&listings.Listing{},
		&listings.HouseDetail{},
		&listings.HotelDetail{},
		&listings.EventDetail{},
		&bookings.Booking{},
		&tickets.EventTicketType{},
		&tickets.EventBooking{},
		&tickets.BookingLine{},
		&tickets.EventTicket{},
	)
}
