package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rookgm/donations/internal/models"
	"go.uber.org/zap"
)

// FormRepository stores form submissions
type FormRepository interface {
	CreateSubmission(ctx context.Context, sub *models.FormSubmission) (*models.FormSubmission, error)
}

// FormNotifier notifies admin and submitter about a new submission
type FormNotifier interface {
	FormSubmitted(ctx context.Context, sub models.FormSubmission)
}

// Form is a submitted site form
type Form interface {
	Submission() models.FormSubmission
}

// ContactForm is contact page form
type ContactForm struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submission implements Form
func (f *ContactForm) Submission() models.FormSubmission {
	return models.FormSubmission{
		Kind:  models.FormKindContact,
		Name:  f.Name,
		Email: f.Email,
		Fields: map[string]string{
			"subject": f.Subject,
			"message": f.Message,
		},
	}
}

// VolunteerForm is volunteer sign-up form
type VolunteerForm struct {
	FullName     string `json:"fullName" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,max=20"`
	Skills       string `json:"skills" validate:"required,max=2000"`
	Availability string `json:"availability" validate:"required,max=500"`
	Message      string `json:"message" validate:"required,max=5000"`
}

// Submission implements Form
func (f *VolunteerForm) Submission() models.FormSubmission {
	return models.FormSubmission{
		Kind:  models.FormKindVolunteer,
		Name:  f.FullName,
		Email: f.Email,
		Fields: map[string]string{
			"phone":        f.Phone,
			"skills":       f.Skills,
			"availability": f.Availability,
			"message":      f.Message,
		},
	}
}

// PartnershipForm is partnership enquiry form
type PartnershipForm struct {
	OrganizationName string `json:"organizationName" validate:"required,max=300"`
	ContactPerson    string `json:"contactPerson" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,max=20"`
	PartnershipType  string `json:"partnershipType" validate:"required,max=100"`
	Message          string `json:"message" validate:"required,max=5000"`
}

// Submission implements Form
func (f *PartnershipForm) Submission() models.FormSubmission {
	return models.FormSubmission{
		Kind:  models.FormKindPartnership,
		Name:  f.ContactPerson,
		Email: f.Email,
		Fields: map[string]string{
			"organizationName": f.OrganizationName,
			"phone":            f.Phone,
			"partnershipType":  f.PartnershipType,
			"message":          f.Message,
		},
	}
}

// FormService handles site forms
type FormService struct {
	repo     FormRepository
	notifier FormNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewFormService creates new FormService instance
func NewFormService(repo FormRepository, notifier FormNotifier, logger *zap.Logger) *FormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates and stores form, notification failures are not returned
func (fs *FormService) Submit(ctx context.Context, form Form) (*models.FormSubmission, error) {
	if err := validateStruct(form); err != nil {
		return nil, err
	}

	sub := form.Submission()
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	for k, v := range sub.Fields {
		sub.Fields[k] = strings.TrimSpace(v)
	}
	sub.SubmittedAt = fs.now()

	stored, err := fs.repo.CreateSubmission(ctx, &sub)
	if err != nil {
		return nil, fmt.Errorf("store %s form: %w", sub.Kind, err)
	}

	fs.logger.Info("form submitted",
		zap.String("kind", stored.Kind),
		zap.Uint64("id", stored.ID))

	if fs.notifier != nil {
		fs.notifier.FormSubmitted(ctx, *stored)
	}

	return stored, nil
}
