package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elfworks/santa-api-go/pkg/models"
)

// FileStore is the flat-file backend: one JSON document per group under a
// data directory, plus stats.json and admin.json. Writes go through a
// temp-file rename so a replace is atomic relative to reads, and a
// store-level mutex serializes writers.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore opens (creating if needed) a file store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) groupPath(id string) string {
	return filepath.Join(s.dir, "group-"+id+".json")
}

func (s *FileStore) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) readGroup(path string) (*models.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var group models.Group
	if err := json.Unmarshal(data, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *FileStore) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.allGroupsLocked()
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].Code == group.Code {
			return ErrDuplicateCode
		}
	}

	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now
	return s.writeJSON(s.groupPath(group.ID), group)
}

func (s *FileStore) GroupByCode(ctx context.Context, code string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups, err := s.allGroupsLocked()
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].Code == code {
			return &groups[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) GroupByID(ctx context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readGroup(s.groupPath(id))
}

func (s *FileStore) UpdateGroupInfo(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.readGroup(s.groupPath(group.ID))
	if err != nil {
		return err
	}
	stored.Name = group.Name
	stored.OrganizerName = group.OrganizerName
	stored.OrganizerEmail = group.OrganizerEmail
	stored.UpdatedAt = time.Now()
	return s.writeJSON(s.groupPath(stored.ID), stored)
}

func (s *FileStore) ReplaceParticipants(ctx context.Context, groupID string, participants []models.Participant, assignments []models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.readGroup(s.groupPath(groupID))
	if err != nil {
		return err
	}
	stored.Participants = participants
	stored.Assignments = assignments
	stored.UpdatedAt = time.Now()
	return s.writeJSON(s.groupPath(groupID), stored)
}

func (s *FileStore) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.groupPath(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (s *FileStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allGroupsLocked()
}

func (s *FileStore) allGroupsLocked() ([]models.Group, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var groups []models.Group
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "group-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		group, err := s.readGroup(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

func (s *FileStore) statsPath() string {
	return filepath.Join(s.dir, "stats.json")
}

func (s *FileStore) readStats() (map[string]Stats, error) {
	data, err := os.ReadFile(s.statsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Stats{}, nil
		}
		return nil, err
	}
	stats := map[string]Stats{}
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *FileStore) RecordStats(ctx context.Context, date string, delta Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.readStats()
	if err != nil {
		return err
	}
	day := stats[date]
	day.GroupsCreated += delta.GroupsCreated
	day.PairingsComputed += delta.PairingsComputed
	day.MailsSent += delta.MailsSent
	day.MailsSkipped += delta.MailsSkipped
	stats[date] = day
	return s.writeJSON(s.statsPath(), stats)
}

func (s *FileStore) StatsSince(ctx context.Context, days int) ([]DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, err := s.readStats()
	if err != nil {
		return nil, err
	}

	daily := make([]DailyStats, 0, len(stats))
	for date, day := range stats {
		daily = append(daily, DailyStats{Date: date, Stats: day})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date > daily[j].Date })
	if len(daily) > days {
		daily = daily[:days]
	}
	return daily, nil
}

func (s *FileStore) adminPath() string {
	return filepath.Join(s.dir, "admin.json")
}

func (s *FileStore) EnsureAdmin(ctx context.Context, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.adminPath()); err == nil {
		return nil
	}
	return s.writeJSON(s.adminPath(), AdminUser{Username: username, PasswordHash: passwordHash})
}

func (s *FileStore) AdminByUsername(ctx context.Context, username string) (*AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.adminPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var admin AdminUser
	if err := json.Unmarshal(data, &admin); err != nil {
		return nil, err
	}
	if admin.Username != username {
		return nil, ErrNotFound
	}
	return &admin, nil
}

func (s *FileStore) Close() error {
	return nil
}
