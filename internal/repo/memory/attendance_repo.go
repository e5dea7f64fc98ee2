package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rsharma-dev/attendhub/internal/domain/attendance"
)

// AttendanceRepo is an in-memory stand-in for the postgres attendance repo,
// used by handler tests.
type AttendanceRepo struct {
	mu       sync.RWMutex
	sessions []attendance.Session
}

func NewAttendanceRepo() *AttendanceRepo {
	return &AttendanceRepo{}
}

func (r *AttendanceRepo) Create(_ context.Context, s attendance.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append(r.sessions, s)
	return nil
}

func (r *AttendanceRepo) History(_ context.Context, filter attendance.HistoryFilter) ([]attendance.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]attendance.Session, 0)

	for _, s := range r.sessions {
		if filter.FacultyID != nil && s.FacultyID != *filter.FacultyID {
			continue
		}
		if filter.Department != nil && s.Department != *filter.Department {
			continue
		}
		if filter.Semester != nil && s.Semester != *filter.Semester {
			continue
		}
		if filter.Subject != nil && s.Subject != *filter.Subject {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	return out, nil
}

func (r *AttendanceRepo) ListSince(_ context.Context, facultyID string, since time.Time) ([]attendance.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]attendance.Session, 0)

	for _, s := range r.sessions {
		if s.FacultyID == facultyID && !s.Date.Before(since) {
			out = append(out, s)
		}
	}

	return out, nil
}
