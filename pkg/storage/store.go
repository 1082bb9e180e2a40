// Package storage provides persistence for gift-exchange groups behind a
// single interface with interchangeable backends: a relational store (gorm
// over SQLite or Postgres) and a flat-file store (one JSON document per
// group). Neither backend affects the pairing engine's contract.
package storage

import (
	"context"
	"errors"

	"github.com/elfworks/santa-api-go/pkg/models"
)

var (
	// ErrNotFound is returned when no group matches the given code or id.
	ErrNotFound = errors.New("storage: group not found")

	// ErrDuplicateCode is returned when a group code is already taken.
	// Callers mint a new code and retry.
	ErrDuplicateCode = errors.New("storage: group code already exists")
)

// Stats is a delta of daily usage counters.
type Stats struct {
	GroupsCreated    int `json:"groups_created"`
	PairingsComputed int `json:"pairings_computed"`
	MailsSent        int `json:"mails_sent"`
	MailsSkipped     int `json:"mails_skipped"`
}

// DailyStats is the accumulated counters for one calendar date.
type DailyStats struct {
	Date string `json:"date"`
	Stats
}

// AdminUser is a site administrator account.
type AdminUser struct {
	Username     string
	PasswordHash string
}

// Store is the persistence contract for groups. A "replace participants,
// recompute assignments" operation must be atomic relative to reads of the
// same group.
type Store interface {
	// CreateGroup persists a new group together with its participants and
	// assignment set. Returns ErrDuplicateCode if the code is taken.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GroupByCode retrieves a group by its shareable code.
	GroupByCode(ctx context.Context, code string) (*models.Group, error)

	// GroupByID retrieves a group by its internal id.
	GroupByID(ctx context.Context, id string) (*models.Group, error)

	// UpdateGroupInfo updates the group's name and organizer fields only.
	UpdateGroupInfo(ctx context.Context, group *models.Group) error

	// ReplaceParticipants atomically swaps a group's participant list and
	// assignment set. Prior assignments are wholly discarded.
	ReplaceParticipants(ctx context.Context, groupID string, participants []models.Participant, assignments []models.Assignment) error

	// DeleteGroup removes a group and everything attached to it.
	DeleteGroup(ctx context.Context, id string) error

	// ListGroups returns all groups without their assignments.
	ListGroups(ctx context.Context) ([]models.Group, error)

	// RecordStats accumulates usage counters for a calendar date.
	RecordStats(ctx context.Context, date string, delta Stats) error

	// StatsSince returns per-day counters for the most recent days,
	// newest first.
	StatsSince(ctx context.Context, days int) ([]DailyStats, error)

	// EnsureAdmin creates the admin account if no admin exists yet.
	EnsureAdmin(ctx context.Context, username, passwordHash string) error

	// AdminByUsername retrieves an admin account, ErrNotFound if absent.
	AdminByUsername(ctx context.Context, username string) (*AdminUser, error)

	// Close releases any resources held by the store.
	Close() error
}
