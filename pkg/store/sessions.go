package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionRecord is the persisted summary of one completed focus
// session. Records are never mutated after creation.
type SessionRecord struct {
	ID              string    `json:"id"`
	User            string    `json:"user"` // owner's email
	Score           int       `json:"score"`
	DurationSeconds int       `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
}

// SessionStore keeps the append-only session history in a JSON file.
// Order is preserved: records are stored oldest first, exactly as
// appended.
type SessionStore struct {
	path     string
	sessions []*SessionRecord
	mu       sync.RWMutex
}

type sessionFile struct {
	Version   int              `json:"version"`
	UpdatedAt string           `json:"updated_at"`
	Sessions  []*SessionRecord `json:"sessions"`
}

// OpenSessions opens (or creates) the session store at path.
func OpenSessions(path string) (*SessionStore, error) {
	s := &SessionStore{path: path}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("store: load sessions: %w", err)
		}
	}

	return s, nil
}

func (s *SessionStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var stored sessionFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	s.sessions = stored.Sessions
	return nil
}

func (s *SessionStore) save() error {
	stored := sessionFile{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Sessions:  s.sessions,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Append adds one completed session to the end of the history. Prior
// records are left untouched.
func (s *SessionStore) Append(rec SessionRecord) (*SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	s.sessions = append(s.sessions, &rec)
	if err := s.save(); err != nil {
		s.sessions = s.sessions[:len(s.sessions)-1]
		return nil, fmt.Errorf("store: save sessions: %w", err)
	}
	return &rec, nil
}

// All returns every record in append order.
func (s *SessionStore) All() []*SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*SessionRecord, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// ForUser returns the user's sessions, newest first.
func (s *SessionStore) ForUser(email string) []*SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SessionRecord
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].User == email {
			out = append(out, s.sessions[i])
		}
	}
	return out
}

// Count returns the total number of records.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats summarizes a user's history for the dashboard. Averages are
// rounded to the nearest integer; fields are nil when the window holds
// no sessions.
type Stats struct {
	TodayBest  *int `json:"today_best"`
	WeekAvg    *int `json:"week_avg"`
	MonthAvg   *int `json:"month_avg"`
	TotalCount int  `json:"total_count"`
}

// StatsFor computes dashboard statistics for one user at time now.
func (s *SessionStore) StatsFor(email string, now time.Time) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		todayBest          *int
		weekSum, weekCount int
		monthSum, monthCnt int
		total              int
	)

	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)

	for _, rec := range s.sessions {
		if rec.User != email {
			continue
		}
		total++

		if !rec.Timestamp.Before(dayStart) {
			if todayBest == nil || rec.Score > *todayBest {
				score := rec.Score
				todayBest = &score
			}
		}
		if rec.Timestamp.After(weekAgo) {
			weekSum += rec.Score
			weekCount++
		}
		if rec.Timestamp.After(monthAgo) {
			monthSum += rec.Score
			monthCnt++
		}
	}

	stats := Stats{TodayBest: todayBest, TotalCount: total}
	if weekCount > 0 {
		avg := (weekSum + weekCount/2) / weekCount
		stats.WeekAvg = &avg
	}
	if monthCnt > 0 {
		avg := (monthSum + monthCnt/2) / monthCnt
		stats.MonthAvg = &avg
	}
	return stats
}
