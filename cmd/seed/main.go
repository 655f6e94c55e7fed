package main

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"resort/internal/config"
	"resort/internal/database"
	"resort/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, nil)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (children first)
	log.Println("Cleaning old data...")
	for _, table := range []string{
		"audit_logs", "payments", "invoice_items", "invoices", "online_payments",
		"service_bookings", "check_ins", "bookings", "inventory",
		"services", "rooms", "room_types", "customers", "sequences", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Printf("skip %s: %v", table, err)
		}
	}

	// ================== STAFF ==================
	log.Println("Creating staff accounts...")
	staff := []struct {
		email, name, password string
		role                  domain.UserRole
	}{
		{"admin@resort.local", "Resort Admin", "admin12345", domain.RoleAdmin},
		{"frontdesk@resort.local", "Front Desk", "desk12345", domain.RoleReceptionist},
		{"accounts@resort.local", "Accounts", "books12345", domain.RoleAccountant},
	}
	for _, s := range staff {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		u := domain.User{Email: s.email, PasswordHash: string(hash), FullName: s.name, Role: s.role, IsActive: true}
		if err := db.Create(&u).Error; err != nil {
			log.Fatal("create user:", err)
		}
		log.Printf("%s created: %s / %s", s.role, s.email, s.password)
	}

	// ================== ROOMS ==================
	log.Println("Creating room types and rooms...")
	types := []domain.RoomType{
		{TypeName: "Garden Standard", BasePrice: decimal.NewFromInt(1200000), MaxOccupancy: 2, Amenities: "wifi,air-conditioning,garden view"},
		{TypeName: "Ocean Deluxe", BasePrice: decimal.NewFromInt(2500000), MaxOccupancy: 3, Amenities: "wifi,balcony,ocean view,minibar"},
		{TypeName: "Beach Villa", BasePrice: decimal.NewFromInt(6000000), MaxOccupancy: 6, Amenities: "private pool,kitchen,beach access"},
	}
	for i := range types {
		if err := db.Create(&types[i]).Error; err != nil {
			log.Fatal("create room type:", err)
		}
		for n := 1; n <= 4; n++ {
			room := domain.Room{
				RoomNumber: fmt.Sprintf("%c%02d", 'A'+i, n),
				RoomTypeID: types[i].ID,
				Floor:      i + 1,
				Status:     domain.RoomAvailable,
			}
			if i == 2 && n == 4 {
				room.Status = domain.RoomMaintenance
				room.Notes = "Pool resurfacing"
			}
			if err := db.Create(&room).Error; err != nil {
				log.Fatal("create room:", err)
			}
		}
	}

	// ================== SERVICES ==================
	log.Println("Creating services...")
	services := []domain.Service{
		{ServiceCode: "SPA01", ServiceName: "Hot stone massage", Category: "spa", UnitPrice: decimal.NewFromInt(650000), Unit: "session", IsActive: true},
		{ServiceCode: "TOUR01", ServiceName: "Island hopping", Category: "tour", UnitPrice: decimal.NewFromInt(900000), Unit: "person", IsActive: true},
		{ServiceCode: "LAU01", ServiceName: "Laundry", Category: "laundry", UnitPrice: decimal.NewFromInt(50000), Unit: "kg", IsActive: true},
		{ServiceCode: "TRF01", ServiceName: "Airport transfer", Category: "transport", UnitPrice: decimal.NewFromInt(400000), Unit: "trip", IsActive: true},
	}
	if err := db.Create(&services).Error; err != nil {
		log.Fatal("create services:", err)
	}

	// ================== INVENTORY ==================
	log.Println("Creating inventory...")
	inventory := []domain.Inventory{
		{ItemName: "Bath towel", Warehouse: "Housekeeping", QuantityOnHand: 240, MinStockLevel: 80, UnitCost: decimal.NewFromInt(90000)},
		{ItemName: "Shampoo 30ml", Warehouse: "Housekeeping", QuantityOnHand: 35, MinStockLevel: 100, UnitCost: decimal.NewFromInt(8000)},
		{ItemName: "Bottled water", Warehouse: "F&B", QuantityOnHand: 600, MinStockLevel: 200, UnitCost: decimal.NewFromInt(5000)},
	}
	if err := db.Create(&inventory).Error; err != nil {
		log.Fatal("create inventory:", err)
	}

	// ================== CUSTOMERS ==================
	log.Println("Creating customers...")
	day := time.Now().Format("20060102")
	customers := []domain.Customer{
		{CustomerCode: "CUS" + day + "901", FirstName: "Lan", LastName: "Tran", Email: "lan.tran@example.com", Phone: "0901234567"},
		{CustomerCode: "CUS" + day + "902", FirstName: "Emma", LastName: "Walsh", Email: "emma.walsh@example.com"},
	}
	if err := db.Create(&customers).Error; err != nil {
		log.Fatal("create customers:", err)
	}

	log.Println("Seed completed")
}
