package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/money"
)

// template names
const (
	TemplateDonationAdmin   = "donation_admin"
	TemplateDonationReceipt = "donation_receipt"
	TemplateFormAdmin       = "form_admin"
	TemplateFormReply       = "form_reply"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

var istZone = time.FixedZone("IST", 5*60*60+30*60)

// Render executes subject and body of named template
func Render(name string, data any) (subject, body string, err error) {
	var sb, bb bytes.Buffer
	if err := templates.ExecuteTemplate(&sb, name+".subject", data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := templates.ExecuteTemplate(&bb, name+".body", data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	// subjects are plain text headers
	return html.UnescapeString(strings.TrimSpace(sb.String())), bb.String(), nil
}

// DonationView is template data of a completed donation
type DonationView struct {
	Organization  string
	DonorName     string
	Email         string
	Phone         string
	Message       string
	Amount        string
	TransactionID string
	PaymentMode   string
	OrderID       string
	Date          string
	Year          int
}

// NewDonationView builds template data from completed order
func NewDonationView(org string, order models.Order) DonationView {
	at := order.UpdatedAt
	if order.CompletedAt != nil {
		at = *order.CompletedAt
	}
	at = at.In(istZone)

	return DonationView{
		Organization:  org,
		DonorName:     order.Donor.FullName,
		Email:         order.Donor.Email,
		Phone:         order.Donor.Phone,
		Message:       order.Donor.Message,
		Amount:        money.Format(order.AmountMinor),
		TransactionID: order.TransactionID,
		PaymentMode:   order.PaymentMode,
		OrderID:       order.MerchantOrderID,
		Date:          at.Format("2 January 2006, 03:04 PM"),
		Year:          at.Year(),
	}
}

// FormField is a labelled form value
type FormField struct {
	Label string
	Value string
}

// FormView is template data of a form submission
type FormView struct {
	Organization string
	Kind         string
	Name         string
	Email        string
	Fields       []FormField
	Date         string
}

// NewFormView builds template data from submission, fields sorted by label
func NewFormView(org string, sub models.FormSubmission) FormView {
	fields := make([]FormField, 0, len(sub.Fields))
	for k, v := range sub.Fields {
		fields = append(fields, FormField{Label: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Label < fields[j].Label })

	return FormView{
		Organization: org,
		Kind:         sub.Kind,
		Name:         sub.Name,
		Email:        sub.Email,
		Fields:       fields,
		Date:         sub.SubmittedAt.In(istZone).Format("2 January 2006, 03:04 PM"),
	}
}
