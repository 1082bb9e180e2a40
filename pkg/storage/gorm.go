package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elfworks/santa-api-go/pkg/database"
	"github.com/elfworks/santa-api-go/pkg/models"
)

// GormStore is the relational backend (SQLite or Postgres via gorm).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an initialized gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateGroup(ctx context.Context, group *models.Group) error {
	record := toRecord(group)
	err := s.db.WithContext(ctx).Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			return ErrDuplicateCode
		}
		return err
	}
	group.CreatedAt = record.CreatedAt
	group.UpdatedAt = record.UpdatedAt
	return nil
}

func (s *GormStore) GroupByCode(ctx context.Context, code string) (*models.Group, error) {
	return s.findGroup(ctx, "code = ?", code)
}

func (s *GormStore) GroupByID(ctx context.Context, id string) (*models.Group, error) {
	return s.findGroup(ctx, "id = ?", id)
}

func (s *GormStore) findGroup(ctx context.Context, query string, arg string) (*models.Group, error) {
	var record database.GroupRecord
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where(query, arg).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(&record), nil
}

func (s *GormStore) UpdateGroupInfo(ctx context.Context, group *models.Group) error {
	result := s.db.WithContext(ctx).Model(&database.GroupRecord{}).
		Where("id = ?", group.ID).
		Updates(map[string]interface{}{
			"name":            group.Name,
			"organizer_name":  group.OrganizerName,
			"organizer_email": group.OrganizerEmail,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ReplaceParticipants(ctx context.Context, groupID string, participants []models.Participant, assignments []models.Assignment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record database.GroupRecord
		if err := tx.Where("id = ?", groupID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("group_id = ?", groupID).Delete(&database.ParticipantRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&database.AssignmentRecord{}).Error; err != nil {
			return err
		}

		for i, p := range participants {
			if err := tx.Create(&database.ParticipantRecord{
				ID:       p.ID,
				GroupID:  groupID,
				Position: i,
				Name:     p.Name,
				Email:    p.Email,
			}).Error; err != nil {
				return err
			}
		}
		for i, a := range assignments {
			if err := tx.Create(&database.AssignmentRecord{
				GroupID:    groupID,
				Position:   i,
				GiverID:    a.GiverID,
				ReceiverID: a.ReceiverID,
			}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&database.GroupRecord{}).Where("id = ?", groupID).
			Update("updated_at", time.Now()).Error
	})
}

func (s *GormStore) DeleteGroup(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&database.ParticipantRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&database.AssignmentRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&database.GroupRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	var records []database.GroupRecord
	if err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at desc").Find(&records).Error; err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, len(records))
	for i := range records {
		groups = append(groups, *fromRecord(&records[i]))
	}
	return groups, nil
}

// RecordStats accumulates daily counters with a single-query upsert
// (supported by both Postgres and SQLite).
func (s *GormStore) RecordStats(ctx context.Context, date string, delta Stats) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"groups_created":    gorm.Expr("groups_created + ?", delta.GroupsCreated),
			"pairings_computed": gorm.Expr("pairings_computed + ?", delta.PairingsComputed),
			"mails_sent":        gorm.Expr("mails_sent + ?", delta.MailsSent),
			"mails_skipped":     gorm.Expr("mails_skipped + ?", delta.MailsSkipped),
		}),
	}).Create(&database.UsageRecord{
		Date:             date,
		GroupsCreated:    delta.GroupsCreated,
		PairingsComputed: delta.PairingsComputed,
		MailsSent:        delta.MailsSent,
		MailsSkipped:     delta.MailsSkipped,
	}).Error
}

func (s *GormStore) StatsSince(ctx context.Context, days int) ([]DailyStats, error) {
	var records []database.UsageRecord
	if err := s.db.WithContext(ctx).Order("date desc").Limit(days).Find(&records).Error; err != nil {
		return nil, err
	}

	stats := make([]DailyStats, 0, len(records))
	for _, r := range records {
		stats = append(stats, DailyStats{
			Date: r.Date,
			Stats: Stats{
				GroupsCreated:    r.GroupsCreated,
				PairingsComputed: r.PairingsComputed,
				MailsSent:        r.MailsSent,
				MailsSkipped:     r.MailsSkipped,
			},
		})
	}
	return stats, nil
}

func (s *GormStore) EnsureAdmin(ctx context.Context, username, passwordHash string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.AdminUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&database.AdminUser{
		Username:     username,
		PasswordHash: passwordHash,
	}).Error
}

func (s *GormStore) AdminByUsername(ctx context.Context, username string) (*AdminUser, error) {
	var record database.AdminUser
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &AdminUser{Username: record.Username, PasswordHash: record.PasswordHash}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(group *models.Group) *database.GroupRecord {
	record := &database.GroupRecord{
		ID:             group.ID,
		Code:           group.Code,
		Name:           group.Name,
		OrganizerName:  group.OrganizerName,
		OrganizerEmail: group.OrganizerEmail,
	}
	for i, p := range group.Participants {
		record.Participants = append(record.Participants, database.ParticipantRecord{
			ID:       p.ID,
			GroupID:  group.ID,
			Position: i,
			Name:     p.Name,
			Email:    p.Email,
		})
	}
	for i, a := range group.Assignments {
		record.Assignments = append(record.Assignments, database.AssignmentRecord{
			GroupID:    group.ID,
			Position:   i,
			GiverID:    a.GiverID,
			ReceiverID: a.ReceiverID,
		})
	}
	return record
}

func fromRecord(record *database.GroupRecord) *models.Group {
	group := &models.Group{
		ID:             record.ID,
		Code:           record.Code,
		Name:           record.Name,
		OrganizerName:  record.OrganizerName,
		OrganizerEmail: record.OrganizerEmail,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
	for _, p := range record.Participants {
		group.Participants = append(group.Participants, models.Participant{
			ID:    p.ID,
			Name:  p.Name,
			Email: p.Email,
		})
	}
	for _, a := range record.Assignments {
		group.Assignments = append(group.Assignments, models.Assignment{
			GiverID:    a.GiverID,
			ReceiverID: a.ReceiverID,
		})
	}
	return group
}
