package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stayhub/internal/auth"
	"stayhub/internal/hotels"
	"stayhub/internal/inventory"
	"stayhub/internal/shared/config"
	"stayhub/internal/shared/database"
)

// rateDays is how far ahead the seeder opens each room's calendar
const rateDays = 60

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting StayHub database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.GetPostgreSQL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables, children before parents
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"booking_notes",
		"booking_events",
		"payments",
		"booking_details",
		"bookings",
		"room_rate_days",
		"rooms",
		"room_types",
		"hotels",
		"accounts",
	}
	for _, table := range tables {
		if err := s.db.GetPostgreSQL().Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	if err := s.seedAccounts(); err != nil {
		return err
	}
	return s.seedHotels()
}

func (s *Seeder) seedAccounts() error {
	password, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	accounts := []auth.Account{
		{ID: uuid.New(), Email: "admin@stayhub.dev", Password: string(password), FullName: "Site Admin", Role: auth.RoleAdmin},
		{ID: uuid.New(), Email: "alice@example.com", Password: string(password), FullName: "Alice Tan", Role: auth.RoleCustomer},
		{ID: uuid.New(), Email: "bob@example.com", Password: string(password), FullName: "Bob Lim", Role: auth.RoleCustomer},
	}
	if err := s.db.GetPostgreSQL().Create(&accounts).Error; err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	fmt.Printf("  seeded %d accounts (password: password123)\n", len(accounts))
	return nil
}

type hotelSpec struct {
	name     string
	city     string
	address  string
	stars    int
	rooms    []roomSpec
}

type roomSpec struct {
	typeName  string
	bedType   string
	maxGuests int
	basePrice float64
	available int
	roomNos   []string
}

func (s *Seeder) seedHotels() error {
	specs := []hotelSpec{
		{
			name: "Harbourview Grand", city: "Singapore", address: "1 Marina Walk", stars: 5,
			rooms: []roomSpec{
				{typeName: "Deluxe King", bedType: "King", maxGuests: 2, basePrice: 320, available: 4, roomNos: []string{"1201", "1202", "1203", "1204"}},
				{typeName: "Family Suite", bedType: "2 Queens", maxGuests: 4, basePrice: 540, available: 2, roomNos: []string{"1501", "1502"}},
			},
		},
		{
			name: "Riverside Inn", city: "Bangkok", address: "88 Chao Phraya Rd", stars: 3,
			rooms: []roomSpec{
				{typeName: "Standard Twin", bedType: "2 Singles", maxGuests: 2, basePrice: 65, available: 10, roomNos: []string{"201", "202", "203", "204", "205", "206", "207", "208", "209", "210"}},
			},
		},
		{
			name: "Summit Lodge", city: "Singapore", address: "42 Orchard Hill", stars: 4,
			rooms: []roomSpec{
				{typeName: "Executive Queen", bedType: "Queen", maxGuests: 2, basePrice: 210, available: 6, roomNos: []string{"801", "802", "803", "804", "805", "806"}},
			},
		},
	}

	pg := s.db.GetPostgreSQL()
	start := time.Now().UTC()

	for _, spec := range specs {
		hotel := hotels.Hotel{
			ID:      uuid.New(),
			Name:    spec.name,
			City:    spec.city,
			Address: spec.address,

			StarRating: spec.stars,
			Status:     hotels.HotelStatusActive,
		}
		if err := pg.Create(&hotel).Error; err != nil {
			return fmt.Errorf("failed to seed hotel %s: %w", spec.name, err)
		}

		for _, room := range spec.rooms {
			roomType := hotels.RoomType{
				ID:        uuid.New(),
				HotelID:   hotel.ID,
				Name:      room.typeName,
				BedType:   room.bedType,
				MaxGuests: room.maxGuests,
			}
			if err := pg.Create(&roomType).Error; err != nil {
				return fmt.Errorf("failed to seed room type %s: %w", room.typeName, err)
			}

			// One Room row represents the bookable unit; nightly price and
			// remaining count live in the rate ledger.
			bookable := hotels.Room{
				ID:         uuid.New(),
				HotelID:    hotel.ID,
				RoomTypeID: roomType.ID,
				RoomNo:     room.roomNos[0],
				Status:     hotels.RoomStatusActive,
			}
			if err := pg.Create(&bookable).Error; err != nil {
				return fmt.Errorf("failed to seed room: %w", err)
			}

			rateRows := make([]inventory.RoomRateDay, 0, rateDays)
			for day := 0; day < rateDays; day++ {
				date := inventory.FormatDate(start.AddDate(0, 0, day))
				price := room.basePrice
				// Weekend uplift keeps seeded pricing realistic.
				weekday := start.AddDate(0, 0, day).Weekday()
				if weekday == time.Friday || weekday == time.Saturday {
					price = price * 1.25
				}
				rateRows = append(rateRows, inventory.RoomRateDay{
					ID:             uuid.New(),
					RoomID:         bookable.ID,
					Date:           date,
					BasePrice:      price,
					AvailableRooms: room.available,
				})
			}
			if err := pg.Create(&rateRows).Error; err != nil {
				return fmt.Errorf("failed to seed rate days: %w", err)
			}
		}
		fmt.Printf("  seeded hotel %q with %d room types\n", spec.name, len(spec.rooms))
	}

	return nil
}
