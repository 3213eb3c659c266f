package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rookgm/donations/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingForms struct {
	mu   sync.Mutex
	subs []models.FormSubmission
	err  error
}

func (r *recordingForms) CreateSubmission(_ context.Context, sub *models.FormSubmission) (*models.FormSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	stored := *sub
	stored.ID = uint64(len(r.subs) + 1)
	r.subs = append(r.subs, stored)
	return &stored, nil
}

type recordingFormNotifier struct {
	subs []models.FormSubmission
}

func (n *recordingFormNotifier) FormSubmitted(_ context.Context, sub models.FormSubmission) {
	n.subs = append(n.subs, sub)
}

func TestFormService_Submit(t *testing.T) {
	tests := []struct {
		name      string
		form      Form
		repoErr   error
		wantField string
		wantErr   bool
		wantKind  string
	}{
		{
			name: "contact",
			form: &ContactForm{
				Name:    " Ravi ",
				Email:   "ravi@example.org",
				Subject: "Hello",
				Message: "How can I help?",
			},
			wantKind: models.FormKindContact,
		},
		{
			name: "volunteer",
			form: &VolunteerForm{
				FullName:     "Meera",
				Email:        "meera@example.org",
				Phone:        "9000000000",
				Skills:       "teaching",
				Availability: "weekends",
				Message:      "Happy to help",
			},
			wantKind: models.FormKindVolunteer,
		},
		{
			name: "partnership",
			form: &PartnershipForm{
				OrganizationName: "Acme Foundation",
				ContactPerson:    "Kiran",
				Email:            "kiran@acme.org",
				Phone:            "9111111111",
				PartnershipType:  "CSR",
				Message:          "Let us talk",
			},
			wantKind: models.FormKindPartnership,
		},
		{
			name: "contact_missing_subject",
			form: &ContactForm{
				Name:    "Ravi",
				Email:   "ravi@example.org",
				Message: "Hi",
			},
			wantErr:   true,
			wantField: "subject",
		},
		{
			name: "volunteer_bad_email",
			form: &VolunteerForm{
				FullName:     "Meera",
				Email:        "meera",
				Phone:        "9000000000",
				Skills:       "teaching",
				Availability: "weekends",
				Message:      "Happy to help",
			},
			wantErr:   true,
			wantField: "email",
		},
		{
			name: "storage_failure",
			form: &ContactForm{
				Name:    "Ravi",
				Email:   "ravi@example.org",
				Subject: "Hello",
				Message: "Hi",
			},
			repoErr: errors.New("connection refused"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingForms{err: tt.repoErr}
			notifier := &recordingFormNotifier{}
			svc := NewFormService(repo, notifier, zap.NewNop())

			sub, err := svc.Submit(context.Background(), tt.form)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantField != "" {
					var verr *models.ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.wantField, verr.Field)
				}
				assert.Empty(t, notifier.subs)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, sub.Kind)
			assert.NotZero(t, sub.ID)
			assert.False(t, sub.SubmittedAt.IsZero())
			require.Len(t, notifier.subs, 1)
			assert.Equal(t, sub.ID, notifier.subs[0].ID)
		})
	}
}

func TestFormService_Submit_TrimsInput(t *testing.T) {
	repo := &recordingForms{}
	svc := NewFormService(repo, nil, nil)

	sub, err := svc.Submit(context.Background(), &ContactForm{
		Name:    "  Ravi ",
		Email:   "ravi@example.org",
		Subject: " Hello ",
		Message: "Hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", sub.Name)
	assert.Equal(t, "Hello", sub.Fields["subject"])
}
