package handler

//go:generate mockgen -source=form.go -destination=mocks/form.go -package=mocks

import (
	"context"
	"net/http"

	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/service"
	"go.uber.org/zap"
)

type FormService interface {
	Submit(ctx context.Context, form service.Form) (*models.FormSubmission, error)
}

// FormHandler represents HTTP handler for site forms
type FormHandler struct {
	svc    FormService
	logger *zap.Logger
}

// NewFormHandler creates new FormHandler instance
func NewFormHandler(svc FormService, logger *zap.Logger) *FormHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormHandler{svc: svc, logger: logger}
}

// FormResp is form submission response
type FormResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Contact accepts contact form
// 200 - form stored;
// 400 - malformed request or missing fields;
// 500 - internal server error.
func (fh *FormHandler) Contact() http.HandlerFunc {
	return fh.submit(func() service.Form { return &service.ContactForm{} },
		"Thank you for reaching out. We will get back to you soon.")
}

// Volunteer accepts volunteer form
func (fh *FormHandler) Volunteer() http.HandlerFunc {
	return fh.submit(func() service.Form { return &service.VolunteerForm{} },
		"Thank you for volunteering. Our team will contact you shortly.")
}

// Partnership accepts partnership form
func (fh *FormHandler) Partnership() http.HandlerFunc {
	return fh.submit(func() service.Form { return &service.PartnershipForm{} },
		"Thank you for your interest in partnering with us.")
}

func (fh *FormHandler) submit(newForm func() service.Form, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := newForm()
		if err := decodeJSON(w, r, form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if _, err := fh.svc.Submit(r.Context(), form); err != nil {
			writeServiceError(w, fh.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, FormResp{Success: true, Message: message})
	}
}
