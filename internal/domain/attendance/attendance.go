package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

type StudentRecord struct {
	StudentID string `json:"studentId"`
	Status    Status `json:"status"`
}

// Session is one attendance-taking event for a subject/department/semester/date.
// Immutable once saved; duplicate sessions for the same slot are allowed.
type Session struct {
	ID             string          `json:"id"`
	FacultyID      string          `json:"facultyId"`
	Department     string          `json:"department"`
	Semester       int             `json:"semester"`
	Subject        string          `json:"subject"`
	Date           time.Time       `json:"date"`
	StudentRecords []StudentRecord `json:"studentRecords"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// with pointers if optional, it will be nil (absent filter = wildcard)
type HistoryFilter struct {
	FacultyID  *string
	Department *string
	Semester   *int
	Subject    *string
}

type MarkAttendanceRequest struct {
	FacultyID      string                 `json:"facultyId" binding:"required"`
	Department     string                 `json:"department" binding:"required"`
	Semester       int                    `json:"semester" binding:"required,min=1,max=8"`
	Subject        string                 `json:"subject" binding:"required"`
	Date           *time.Time             `json:"date" binding:"omitempty"`
	StudentRecords []StudentRecordRequest `json:"studentRecords" binding:"required,min=1,dive"`
}

type StudentRecordRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=Present Absent"`
}
