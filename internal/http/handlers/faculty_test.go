package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rsharma-dev/attendhub/internal/cache"
	"github.com/rsharma-dev/attendhub/internal/domain/attendance"
	"github.com/rsharma-dev/attendhub/internal/domain/user"
	"github.com/rsharma-dev/attendhub/internal/http/handlers"
	"github.com/rsharma-dev/attendhub/internal/repo/memory"
)

type facultyRig struct {
	router *gin.Engine
	users  *memory.UsersRepo
	store  *memory.AttendanceRepo
}

func newFacultyRig(rosterTTL time.Duration) facultyRig {
	users := memory.NewUsersRepo()
	store := memory.NewAttendanceRepo()

	h := handlers.NewFacultyHandler(store, users, cache.New(rosterTTL))

	r := gin.New()
	r.POST("/faculty/load-students", h.LoadStudents)
	r.POST("/faculty/mark-attendance", h.MarkAttendance)
	r.GET("/faculty/get-absentee-summary", h.AbsenteeSummary)
	r.GET("/faculty/get-attendance-history", h.AttendanceHistory)

	return facultyRig{router: r, users: users, store: store}
}

func (rig facultyRig) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	rig.router.ServeHTTP(w, req)
	return w
}

func (rig facultyRig) seedStudent(t *testing.T, fullName string, semester int, department user.Department) user.User {
	t.Helper()

	u, err := user.NewStudent(uuid.NewString(), fullName, fullName, "hash", semester, department)
	if err != nil {
		t.Fatalf("new student: %v", err)
	}

	if err := rig.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return u
}

func (rig facultyRig) seedSession(t *testing.T, facultyID, subject string, date time.Time, absent int) {
	t.Helper()

	records := make([]attendance.StudentRecord, 0, absent)

	for i := 0; i < absent; i++ {
		records = append(records, attendance.StudentRecord{
			StudentID: uuid.NewString(),
			Status:    attendance.StatusAbsent,
		})
	}

	err := rig.store.Create(context.Background(), attendance.Session{
		ID:             uuid.NewString(),
		FacultyID:      facultyID,
		Department:     "CSE",
		Semester:       3,
		Subject:        subject,
		Date:           date,
		StudentRecords: records,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

// LoadStudents

func TestLoadStudentsValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing department", body: `{"semester":3}`},
		{name: "missing semester", body: `{"department":"CSE"}`},
		{name: "semester out of range", body: `{"department":"CSE","semester":9}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rig := newFacultyRig(time.Minute)

			w := rig.do(t, http.MethodPost, "/faculty/load-students", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
			}
		})
	}
}

func TestLoadStudentsFiltersByClass(t *testing.T) {
	rig := newFacultyRig(time.Minute)

	rig.seedStudent(t, "Alice", 3, user.DeptCSE)
	rig.seedStudent(t, "Bob", 3, user.DeptCSE)
	rig.seedStudent(t, "Carol", 4, user.DeptCSE)
	rig.seedStudent(t, "Dave", 3, user.DeptIT)

	w := rig.do(t, http.MethodPost, "/faculty/load-students", `{"department":"CSE","semester":3}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var roster []handlers.RosterEntry

	if err := json.Unmarshal(w.Body.Bytes(), &roster); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(roster) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(roster), roster)
	}

	// repo orders by full name
	if roster[0].FullName != "Alice" || roster[1].FullName != "Bob" {
		t.Fatalf("unexpected roster: %+v", roster)
	}
}

func TestLoadStudentsServesCachedRoster(t *testing.T) {
	rig := newFacultyRig(time.Minute)
	rig.seedStudent(t, "Alice", 3, user.DeptCSE)

	first := rig.do(t, http.MethodPost, "/faculty/load-students", `{"department":"CSE","semester":3}`)

	if first.Code != http.StatusOK {
		t.Fatalf("first call: %d %s", first.Code, first.Body.String())
	}

	// a student added behind the cache is invisible until the TTL lapses
	rig.seedStudent(t, "Bob", 3, user.DeptCSE)

	second := rig.do(t, http.MethodPost, "/faculty/load-students", `{"department":"CSE","semester":3}`)

	var roster []handlers.RosterEntry

	if err := json.Unmarshal(second.Body.Bytes(), &roster); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(roster) != 1 {
		t.Fatalf("expected the cached roster of 1, got %d", len(roster))
	}
}

// MarkAttendance

func TestMarkAttendance(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantSessions int
	}{
		{
			name:         "valid session",
			body:         `{"facultyId":"f1","department":"CSE","semester":3,"subject":"DBMS","studentRecords":[{"studentId":"s1","status":"Present"},{"studentId":"s2","status":"Absent"}]}`,
			wantStatus:   http.StatusOK,
			wantSessions: 1,
		},
		{
			name:         "unknown status",
			body:         `{"facultyId":"f1","department":"CSE","semester":3,"subject":"DBMS","studentRecords":[{"studentId":"s1","status":"Late"}]}`,
			wantStatus:   http.StatusBadRequest,
			wantSessions: 0,
		},
		{
			name:         "empty records",
			body:         `{"facultyId":"f1","department":"CSE","semester":3,"subject":"DBMS","studentRecords":[]}`,
			wantStatus:   http.StatusBadRequest,
			wantSessions: 0,
		},
		{
			name:         "missing subject",
			body:         `{"facultyId":"f1","department":"CSE","semester":3,"studentRecords":[{"studentId":"s1","status":"Present"}]}`,
			wantStatus:   http.StatusBadRequest,
			wantSessions: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rig := newFacultyRig(time.Minute)

			w := rig.do(t, http.MethodPost, "/faculty/mark-attendance", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			saved, err := rig.store.History(context.Background(), attendance.HistoryFilter{})
			if err != nil {
				t.Fatalf("history: %v", err)
			}

			if len(saved) != tc.wantSessions {
				t.Fatalf("got %d stored sessions, want %d", len(saved), tc.wantSessions)
			}
		})
	}
}

func TestMarkAttendanceDefaultsDateToToday(t *testing.T) {
	rig := newFacultyRig(time.Minute)

	body := `{"facultyId":"f1","department":"CSE","semester":3,"subject":"DBMS","studentRecords":[{"studentId":"s1","status":"Present"}]}`
	w := rig.do(t, http.MethodPost, "/faculty/mark-attendance", body)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	saved, err := rig.store.History(context.Background(), attendance.HistoryFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	if len(saved) != 1 {
		t.Fatalf("got %d sessions, want 1", len(saved))
	}

	if attendance.DayStart(saved[0].Date) != attendance.DayStart(time.Now().UTC()) {
		t.Fatalf("omitted date should default to today, got %v", saved[0].Date)
	}

	if saved[0].ID == "" {
		t.Fatalf("session id must be assigned")
	}
}

// AbsenteeSummary

func TestAbsenteeSummaryRequiresFacultyID(t *testing.T) {
	rig := newFacultyRig(time.Minute)

	w := rig.do(t, http.MethodGet, "/faculty/get-absentee-summary", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAbsenteeSummaryTwoDayWindow(t *testing.T) {
	rig := newFacultyRig(time.Minute)

	today := attendance.DayStart(time.Now())
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)

	rig.seedSession(t, "f1", "DBMS", today, 3)
	rig.seedSession(t, "f1", "DBMS", yesterday, 2)
	rig.seedSession(t, "f1", "DBMS", lastWeek, 5)
	rig.seedSession(t, "other", "DBMS", today, 9)

	w := rig.do(t, http.MethodGet, "/faculty/get-absentee-summary?facultyId=f1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var rows []attendance.SummaryRow

	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}

	if rows[0].TodayAbsent != 3 || rows[0].YesterdayAbsent != 2 {
		t.Fatalf("got today=%d yesterday=%d, want 3/2", rows[0].TodayAbsent, rows[0].YesterdayAbsent)
	}
}

// AttendanceHistory

func TestAttendanceHistory(t *testing.T) {
	rig := newFacultyRig(time.Minute)

	base := attendance.DayStart(time.Now())

	rig.seedSession(t, "f1", "DBMS", base.AddDate(0, 0, -2), 1)
	rig.seedSession(t, "f1", "OS", base.AddDate(0, 0, -1), 1)
	rig.seedSession(t, "f1", "DBMS", base, 1)
	rig.seedSession(t, "f2", "DBMS", base, 1)

	t.Run("most recent first", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, "/faculty/get-attendance-history?facultyId=f1", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var sessions []attendance.Session

		if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if len(sessions) != 3 {
			t.Fatalf("got %d sessions, want 3", len(sessions))
		}

		for i := 1; i < len(sessions); i++ {
			if sessions[i].Date.After(sessions[i-1].Date) {
				t.Fatalf("history must be ordered most recent first: %v", sessions)
			}
		}
	})

	t.Run("subject filter narrows", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, "/faculty/get-attendance-history?facultyId=f1&subject=OS", "")

		var sessions []attendance.Session

		if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if len(sessions) != 1 || sessions[0].Subject != "OS" {
			t.Fatalf("unexpected filtered result: %+v", sessions)
		}
	})

	t.Run("no filters returns everything", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, "/faculty/get-attendance-history", "")

		var sessions []attendance.Session

		if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if len(sessions) != 4 {
			t.Fatalf("got %d sessions, want 4", len(sessions))
		}
	})

	t.Run("semester must be numeric", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, "/faculty/get-attendance-history?semester=three", "")

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("semester filter narrows", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, fmt.Sprintf("/faculty/get-attendance-history?semester=%d", 3), "")

		var sessions []attendance.Session

		if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if len(sessions) != 4 {
			t.Fatalf("got %d sessions, want 4", len(sessions))
		}
	})
}
