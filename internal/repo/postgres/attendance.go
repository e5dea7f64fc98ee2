package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsharma-dev/attendhub/internal/domain/attendance"
)

type AttendanceRepo struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepo(pool *pgxpool.Pool) *AttendanceRepo {
	return &AttendanceRepo{pool: pool}
}

// Create writes the session and its student records in one transaction.
// Sessions are never updated or deleted afterwards.
func (r *AttendanceRepo) Create(ctx context.Context, s attendance.Session) error {
	tx, err := r.pool.Begin(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO attendance_sessions (id, faculty_id, department, semester, subject, date, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.FacultyID, s.Department, s.Semester, s.Subject, s.Date, s.CreatedAt,
	)

	if err != nil {
		return err
	}

	for pos, rec := range s.StudentRecords {
		_, err = tx.Exec(ctx,
			`INSERT INTO attendance_records (session_id, position, student_id, status)
			 VALUES ($1,$2,$3,$4)`,
			s.ID, pos, rec.StudentID, rec.Status,
		)

		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// History returns sessions matching the filter, most recent first.
// Absent filters act as wildcards.
func (r *AttendanceRepo) History(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.Session, error) {
	baseQuery := `SELECT id, faculty_id, department, semester, subject, date, created_at
	FROM attendance_sessions
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.FacultyID != nil {
		conds = append(conds, fmt.Sprintf("faculty_id = $%d", argsPosition))
		args = append(args, *filter.FacultyID)
		argsPosition++
	}

	if filter.Department != nil {
		conds = append(conds, fmt.Sprintf("department = $%d", argsPosition))
		args = append(args, *filter.Department)
		argsPosition++
	}

	if filter.Semester != nil {
		conds = append(conds, fmt.Sprintf("semester = $%d", argsPosition))
		args = append(args, *filter.Semester)
		argsPosition++
	}

	if filter.Subject != nil {
		conds = append(conds, fmt.Sprintf("subject = $%d", argsPosition))
		args = append(args, *filter.Subject)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY date DESC"

	return r.querySessions(ctx, query, args...)
}

// ListSince returns a faculty's sessions dated at or after since,
// used by the absentee summary (today + yesterday window).
func (r *AttendanceRepo) ListSince(ctx context.Context, facultyID string, since time.Time) ([]attendance.Session, error) {
	return r.querySessions(ctx,
		`SELECT id, faculty_id, department, semester, subject, date, created_at
		 FROM attendance_sessions
		 WHERE faculty_id = $1 AND date >= $2`,
		facultyID, since,
	)
}

func (r *AttendanceRepo) querySessions(ctx context.Context, query string, args ...interface{}) ([]attendance.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	sessions := make([]attendance.Session, 0)
	ids := make([]string, 0)

	for rows.Next() {
		var s attendance.Session

		err = rows.Scan(&s.ID, &s.FacultyID, &s.Department, &s.Semester, &s.Subject, &s.Date, &s.CreatedAt)

		if err != nil {
			return nil, err
		}

		s.StudentRecords = make([]attendance.StudentRecord, 0)
		sessions = append(sessions, s)
		ids = append(ids, s.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(sessions) == 0 {
		return sessions, nil
	}

	if err = r.attachRecords(ctx, sessions, ids); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *AttendanceRepo) attachRecords(ctx context.Context, sessions []attendance.Session, ids []string) error {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, student_id, status
		 FROM attendance_records
		 WHERE session_id = ANY($1)
		 ORDER BY session_id, position`,
		ids,
	)

	if err != nil {
		return err
	}

	defer rows.Close()

	byID := make(map[string]*attendance.Session, len(sessions))
	for i := range sessions {
		byID[sessions[i].ID] = &sessions[i]
	}

	for rows.Next() {
		var sessionID string
		var rec attendance.StudentRecord

		err = rows.Scan(&sessionID, &rec.StudentID, &rec.Status)

		if err != nil {
			return err
		}

		if s, ok := byID[sessionID]; ok {
			s.StudentRecords = append(s.StudentRecords, rec)
		}
	}

	return rows.Err()
}
