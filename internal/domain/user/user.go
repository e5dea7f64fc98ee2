package user

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "Student"
	RoleFaculty Role = "Faculty"
)

type Department string

const (
	DeptCSE         Department = "CSE"
	DeptIT          Department = "IT"
	DeptMech        Department = "MECH"
	DeptCivil       Department = "CIVIL"
	DeptElectronics Department = "ELECTRONICS"
	DeptElectrical  Department = "ELECTRICAL"
)

func (d Department) Valid() bool {
	switch d {
	case DeptCSE, DeptIT, DeptMech, DeptCivil, DeptElectronics, DeptElectrical:
		return true
	}
	return false
}

// StudentProfile holds the academic fields that only exist for students.
// Non-nil exactly when Role == RoleStudent.
type StudentProfile struct {
	Semester   int        `json:"semester"`
	Department Department `json:"department"`
}

type User struct {
	ID       string          `json:"id"`
	FullName string          `json:"fullName"`
	UserName string          `json:"userName"`
	Role     Role            `json:"role"`
	Student  *StudentProfile `json:"student,omitempty"`

	PasswordHash     string `json:"-"` // never expose hash in JSON
	RefreshTokenHash string `json:"-"` // "" means no active session

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound        = errors.New("user not found")
	ErrAlreadyExists   = errors.New("user already exists")
	ErrSessionMismatch = errors.New("stored refresh token mismatch")
)

func newUser(id, fullName, userName, passwordHash string, role Role) User {
	now := time.Now().UTC()

	return User{
		ID:           id,
		FullName:     fullName,
		UserName:     strings.ToLower(userName),
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NewFaculty(id, fullName, userName, passwordHash string) User {
	return newUser(id, fullName, userName, passwordHash, RoleFaculty)
}

func NewStudent(id, fullName, userName, passwordHash string, semester int, department Department) (User, error) {
	if semester < 1 || semester > 8 {
		return User{}, fmt.Errorf("semester must be between 1 and 8, got %d", semester)
	}

	if !department.Valid() {
		return User{}, fmt.Errorf("unknown department %q", department)
	}

	u := newUser(id, fullName, userName, passwordHash, RoleStudent)
	u.Student = &StudentProfile{Semester: semester, Department: department}

	return u, nil
}
