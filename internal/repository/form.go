package repository

import (
	"context"

	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/repository/postgres"
)

const (
	insertSubmissionQuery = `
						INSERT INTO form_submissions (kind, name, email, fields)
						VALUES ($1, $2, $3, $4)
						RETURNING id, submitted_at
`
)

// FormRepository stores contact, volunteer and partnership submissions
type FormRepository struct {
	db *postgres.DB
}

// NewFormRepository creates new FormRepository instance
func NewFormRepository(db *postgres.DB) *FormRepository {
	return &FormRepository{db: db}
}

// CreateSubmission inserts form submission
func (fr *FormRepository) CreateSubmission(ctx context.Context, sub *models.FormSubmission) (*models.FormSubmission, error) {
	err := fr.db.QueryRow(ctx, insertSubmissionQuery, sub.Kind, sub.Name, sub.Email, sub.Fields).Scan(&sub.ID, &sub.SubmittedAt)
	if err != nil {
		return nil, err
	}

	return sub, nil
}
