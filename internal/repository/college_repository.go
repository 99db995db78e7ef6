package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"omr-eval/internal/domain"
	"omr-eval/internal/repository/models"
	"omr-eval/internal/util"
)

const collegeColumns = "id, name, email, password_hash, created_at, updated_at"

type CollegeDatabaseAdapter struct {
	db DBTX
}

func NewCollegeDatabaseAdapter(db DBTX) domain.CollegeRepository {
	return &CollegeDatabaseAdapter{db: db}
}

// CreateCollege inserts a college. Emails are stored lower-cased and unique.
func (r *CollegeDatabaseAdapter) CreateCollege(ctx context.Context, college *domain.College) error {
	now := time.Now().UTC()
	if college.ID == "" {
		college.ID = util.NewULID()
	}
	college.Email = strings.ToLower(strings.TrimSpace(college.Email))
	college.CreatedAt = now
	college.UpdatedAt = now

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO colleges (` + collegeColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := exec.ExecContext(ctx, query,
		college.ID, college.Name, college.Email, college.PasswordHash, college.CreatedAt, college.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("a college with this email already exists")
		}
		return fmt.Errorf("failed to create college: %w", err)
	}
	return nil
}

// GetCollegeByEmail returns nil, nil when no college uses the email.
func (r *CollegeDatabaseAdapter) GetCollegeByEmail(ctx context.Context, email string) (*domain.College, error) {
	return r.getOne(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// GetCollegeByID returns nil, nil when the college does not exist.
func (r *CollegeDatabaseAdapter) GetCollegeByID(ctx context.Context, id string) (*domain.College, error) {
	return r.getOne(ctx, "id", id)
}

func (r *CollegeDatabaseAdapter) getOne(ctx context.Context, column, value string) (*domain.College, error) {
	var row models.College
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + collegeColumns + ` FROM colleges WHERE ` + column + ` = ?`)
	if err := exec.GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get college by %s: %w", column, err)
	}
	return toDomainCollege(&row), nil
}

func toDomainCollege(row *models.College) *domain.College {
	return &domain.College{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
