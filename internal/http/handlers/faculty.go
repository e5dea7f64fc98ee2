package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rsharma-dev/attendhub/internal/cache"
	"github.com/rsharma-dev/attendhub/internal/config"
	"github.com/rsharma-dev/attendhub/internal/domain/attendance"
	"github.com/rsharma-dev/attendhub/internal/domain/user"
)

type AttendanceStore interface {
	Create(ctx context.Context, s attendance.Session) error
	History(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.Session, error)
	ListSince(ctx context.Context, facultyID string, since time.Time) ([]attendance.Session, error)
}

type StudentDirectory interface {
	ListStudents(ctx context.Context, department string, semester int) ([]user.User, error)
}

type FacultyHandler struct {
	store    AttendanceStore
	students StudentDirectory
	roster   *cache.Cache
}

func NewFacultyHandler(store AttendanceStore, students StudentDirectory, roster *cache.Cache) *FacultyHandler {
	return &FacultyHandler{
		store:    store,
		students: students,
		roster:   roster,
	}
}

type LoadStudentsRequest struct {
	Department string `json:"department" binding:"required"`
	Semester   int    `json:"semester" binding:"required,min=1,max=8"`
}

type RosterEntry struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// RosterKey is the cache key for one class roster.
func RosterKey(department string, semester int) string {
	return fmt.Sprintf("roster:%s:%d", department, semester)
}

func (h *FacultyHandler) LoadStudents(ctx *gin.Context) {
	var req LoadStudentsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	key := RosterKey(req.Department, req.Semester)

	if h.roster != nil {
		if cached, ok := h.roster.Get(key); ok {
			if roster, ok := cached.([]RosterEntry); ok {
				ctx.JSON(http.StatusOK, roster)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	students, err := h.students.ListStudents(cctx, req.Department, req.Semester)

	if err != nil {
		slog.Default().Error("student roster lookup failed", "err", err)
		RespondInternal(ctx, "Could not load students")
		return
	}

	roster := make([]RosterEntry, 0, len(students))

	for _, s := range students {
		roster = append(roster, RosterEntry{ID: s.ID, FullName: s.FullName})
	}

	if h.roster != nil {
		h.roster.Set(key, roster)
	}

	ctx.JSON(http.StatusOK, roster)
}

func (h *FacultyHandler) MarkAttendance(ctx *gin.Context) {
	var req attendance.MarkAttendanceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	session, err := attendance.NewFromMarkRequest(req)

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err = h.store.Create(cctx, session)

	if err != nil {
		slog.Default().Error("attendance save failed", "err", err)
		RespondInternal(ctx, "Failed to save attendance")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Attendance saved successfully!",
	})
}

func (h *FacultyHandler) AbsenteeSummary(ctx *gin.Context) {
	facultyID := ctx.Query("facultyId")

	if facultyID == "" {
		RespondBadRequest(ctx, "facultyId is required", nil)
		return
	}

	today := attendance.DayStart(time.Now())
	yesterday := today.AddDate(0, 0, -1)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// the query bound excludes anything older than yesterday up front
	sessions, err := h.store.ListSince(cctx, facultyID, yesterday)

	if err != nil {
		slog.Default().Error("absentee summary lookup failed", "err", err)
		RespondInternal(ctx, "Could not build absentee summary")
		return
	}

	ctx.JSON(http.StatusOK, attendance.BuildAbsenteeSummary(sessions, today))
}

func (h *FacultyHandler) AttendanceHistory(ctx *gin.Context) {
	var filter attendance.HistoryFilter

	if v := ctx.Query("facultyId"); v != "" {
		filter.FacultyID = &v
	}

	if v := ctx.Query("department"); v != "" {
		filter.Department = &v
	}

	if v := ctx.Query("semester"); v != "" {
		semester, err := strconv.Atoi(v)

		if err != nil {
			RespondBadRequest(ctx, "semester must be a number", nil)
			return
		}

		filter.Semester = &semester
	}

	if v := ctx.Query("subject"); v != "" {
		filter.Subject = &v
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	sessions, err := h.store.History(cctx, filter)

	if err != nil {
		slog.Default().Error("attendance history lookup failed", "err", err)
		RespondInternal(ctx, "Could not fetch attendance history")
		return
	}

	ctx.JSON(http.StatusOK, sessions)
}
