package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GroupRecord represents the groups table
type GroupRecord struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"uniqueIndex;not null" json:"code"`
	Name           string    `gorm:"not null" json:"name"`
	OrganizerName  string    `json:"organizer_name"`
	OrganizerEmail string    `json:"organizer_email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Participants []ParticipantRecord `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Assignments  []AssignmentRecord  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

// ParticipantRecord represents the participants table. Position preserves
// the organizer's submission order.
type ParticipantRecord struct {
	ID       string `gorm:"primaryKey" json:"id"`
	GroupID  string `gorm:"index;not null" json:"group_id"`
	Position int    `gorm:"not null" json:"position"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// AssignmentRecord represents the assignments table
type AssignmentRecord struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	GroupID    string `gorm:"index;not null" json:"group_id"`
	Position   int    `gorm:"not null" json:"position"`
	GiverID    string `gorm:"not null" json:"giver_id"`
	ReceiverID string `gorm:"not null" json:"receiver_id"`
}

// UsageRecord represents per-day usage counters
type UsageRecord struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Date             string `gorm:"uniqueIndex;not null" json:"date"`
	GroupsCreated    int    `gorm:"default:0" json:"groups_created"`
	PairingsComputed int    `gorm:"default:0" json:"pairings_computed"`
	MailsSent        int    `gorm:"default:0" json:"mails_sent"`
	MailsSkipped     int    `gorm:"default:0" json:"mails_skipped"`
}

// AdminUser represents the admin_users table
type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB initializes the database connection and migrates the schema.
// DATABASE_URL selects Postgres; otherwise a SQLite file at DATA_PATH is
// used.
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "santa.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(&GroupRecord{}, &ParticipantRecord{}, &AssignmentRecord{}, &UsageRecord{}, &AdminUser{})

	return db
}
