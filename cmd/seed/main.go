package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"kerya/internal/listings"
	"kerya/internal/shared/config"
	"kerya/internal/shared/database"
	"kerya/internal/tickets"
	"kerya/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Kerya Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"event_tickets",
		"event_booking_lines",
		"event_bookings",
		"event_ticket_types",
		"bookings",
		"house_details",
		"hotel_details",
		"event_details",
		"listings",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	listingIDs, err := s.SeedListings(userIDs)
	if err != nil {
		return fmt.Errorf("failed to seed listings: %w", err)
	}

	if err := s.SeedTicketTypes(listingIDs["event"]); err != nil {
		return fmt.Errorf("failed to seed ticket types: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates an admin, two hosts and two visitors
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Same password for every seeded account
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		phone     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@kerya.app", "+213550000001", users.RoleAdmin},
		{"host1", "Amine", "Benali", "amine.benali@kerya.app", "+213550000002", users.RoleHost},
		{"host2", "Lydia", "Cherif", "lydia.cherif@kerya.app", "+213550000003", users.RoleHost},
		{"visitor1", "Yacine", "Hadj", "yacine.hadj@kerya.app", "+213550000004", users.RoleVisitor},
		{"visitor2", "Sara", "Mansouri", "sara.mansouri@kerya.app", "+213550000005", users.RoleVisitor},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Phone:     userData.phone,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedListings creates one listing of each type
func (s *Seeder) SeedListings(userIDs map[string]uuid.UUID) (map[string]uuid.UUID, error) {
	fmt.Println("  🏠 Seeding listings...")

	listingIDs := make(map[string]uuid.UUID)

	house := listings.Listing{
		ID:            uuid.New(),
		OwnerID:       userIDs["host1"],
		Type:          listings.TypeHouse,
		Title:         "Villa with Sea View",
		Slug:          "villa-with-sea-view",
		Description:   "Furnished F4 villa overlooking the bay, ten minutes from the city center.",
		Wilaya:        "Alger",
		Municipality:  "Ain Benian",
		PostalCode:    "16061",
		Lat:           36.8028,
		Lng:           2.9213,
		Status:        listings.StatusActive,
		Capacity:      8,
		PricePerNight: decimal.NewFromInt(15000),
		Currency:      "DZD",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.db.PostgreSQL.Create(&house).Error; err != nil {
		return nil, fmt.Errorf("failed to create house listing: %w", err)
	}
	listingIDs["house"] = house.ID

	houseDetail := listings.HouseDetail{
		ID:               uuid.New(),
		ListingID:        house.ID,
		HouseType:        "F4",
		Rooms:            4,
		Bathrooms:        2,
		Furnished:        true,
		MinStay:          2,
		ContractRequired: "optional",
	}
	if err := s.db.PostgreSQL.Create(&houseDetail).Error; err != nil {
		return nil, fmt.Errorf("failed to create house detail: %w", err)
	}
	fmt.Printf("    ✅ Created listing: %s (house)\n", house.Title)

	hotel := listings.Listing{
		ID:            uuid.New(),
		OwnerID:       userIDs["host2"],
		Type:          listings.TypeHotel,
		Title:         "Hotel El Djazair Double Room",
		Slug:          "hotel-el-djazair-double-room",
		Description:   "Classic double room in a four star hotel, breakfast included.",
		Wilaya:        "Oran",
		Municipality:  "Oran",
		PostalCode:    "31000",
		Lat:           35.6976,
		Lng:           -0.6337,
		Status:        listings.StatusActive,
		Capacity:      2,
		PricePerNight: decimal.NewFromInt(22000),
		Currency:      "DZD",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.db.PostgreSQL.Create(&hotel).Error; err != nil {
		return nil, fmt.Errorf("failed to create hotel listing: %w", err)
	}
	listingIDs["hotel"] = hotel.ID

	hotelDetail := listings.HotelDetail{
		ID:           uuid.New(),
		ListingID:    hotel.ID,
		HotelType:    "Hotel",
		Stars:        4,
		ContactPhone: "+21341000000",
		ContactEmail: "reservations@eldjazair.dz",
	}
	if err := s.db.PostgreSQL.Create(&hotelDetail).Error; err != nil {
		return nil, fmt.Errorf("failed to create hotel detail: %w", err)
	}
	fmt.Printf("    ✅ Created listing: %s (hotel)\n", hotel.Title)

	event := listings.Listing{
		ID:           uuid.New(),
		OwnerID:      userIDs["host2"],
		Type:         listings.TypeEvent,
		Title:        "Constantine Jazz Night",
		Slug:         "constantine-jazz-night",
		Description:  "An open air jazz evening at the Ahmed Bey palace gardens.",
		Wilaya:       "Constantine",
		Municipality: "Constantine",
		PostalCode:   "25000",
		Lat:          36.3650,
		Lng:          6.6147,
		Status:       listings.StatusActive,
		Capacity:     300,
		Currency:     "DZD",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event listing: %w", err)
	}
	listingIDs["event"] = event.ID

	eventDetail := listings.EventDetail{
		ID:             uuid.New(),
		ListingID:      event.ID,
		EventType:      "concert",
		DateStart:      time.Now().AddDate(0, 0, 30),
		FamilyFriendly: true,
	}
	if err := s.db.PostgreSQL.Create(&eventDetail).Error; err != nil {
		return nil, fmt.Errorf("failed to create event detail: %w", err)
	}
	fmt.Printf("    ✅ Created listing: %s (event)\n", event.Title)

	return listingIDs, nil
}

// SeedTicketTypes creates ticket types for the seeded event
func (s *Seeder) SeedTicketTypes(eventID uuid.UUID) error {
	fmt.Println("  🎟️ Seeding ticket types...")

	ticketTypesData := []struct {
		name       string
		desc       string
		price      int64
		total      int
		maxPerUser int
	}{
		{"VIP", "Front rows with a welcome drink", 5000, 50, 4},
		{"General", "Standard admission", 1500, 250, 10},
	}

	for _, data := range ticketTypesData {
		ticketType := tickets.EventTicketType{
			ID:                uuid.New(),
			EventID:           eventID,
			Name:              data.name,
			Description:       data.desc,
			Price:             decimal.NewFromInt(data.price),
			Currency:          "DZD",
			TotalQuantity:     data.total,
			AvailableQuantity: data.total,
			MaxPerUser:        data.maxPerUser,
			IsActive:          true,
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&ticketType).Error; err != nil {
			return fmt.Errorf("failed to create ticket type %s: %w", data.name, err)
		}

		fmt.Printf("    ✅ Created ticket type: %s (%d seats at %d DZD)\n", data.name, data.total, data.price)
	}

	return nil
}
