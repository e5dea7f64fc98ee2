package attendance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func NewFromMarkRequest(req MarkAttendanceRequest) (Session, error) {
	now := time.Now().UTC()

	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	records := make([]StudentRecord, 0, len(req.StudentRecords))

	for _, r := range req.StudentRecords {
		status := Status(r.Status)

		if !status.Valid() {
			return Session{}, fmt.Errorf("invalid attendance status %q", r.Status)
		}

		records = append(records, StudentRecord{
			StudentID: r.StudentID,
			Status:    status,
		})
	}

	return Session{
		ID:             uuid.NewString(),
		FacultyID:      req.FacultyID,
		Department:     req.Department,
		Semester:       req.Semester,
		Subject:        req.Subject,
		Date:           date,
		StudentRecords: records,
		CreatedAt:      now,
	}, nil
}
