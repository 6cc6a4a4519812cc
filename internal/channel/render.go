package channel

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/pkg/utils"
)

// Notification is the content of one reminder notification, before it is
// rendered for any channel.
type Notification struct {
	ReminderID   string
	Title        string
	Category     string
	DueDate      time.Time
	Amount       decimal.NullDecimal
	DaysUntil    int
	Trigger      domain.TriggerKind
	ConfirmURL   string
	DashboardURL string
}

var categoryLabels = map[string]string{
	domain.CategoryCreditCard:  "Credit Card",
	domain.CategoryInsurance:   "Insurance",
	domain.CategoryElectricity: "Electricity",
	domain.CategoryPhone:       "Phone",
	domain.CategoryOther:       "Other",
}

const emailTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #2563eb; text-align: center;">Payment Reminder</h2>
  <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin: 0 0 10px 0; color: #1f2937;">{{.Title}}</h3>
    <p style="margin: 5px 0;"><strong>Due Date:</strong> {{.DueDate}}</p>
    {{- if .Amount}}
    <p style="margin: 5px 0;"><strong>Amount:</strong> {{.Amount}}</p>
    {{- end}}
    <p style="margin: 5px 0;"><strong>Category:</strong> {{.Category}}</p>
    <p style="margin: 15px 0 5px 0; color: #dc2626; font-weight: bold;">{{.DueText}}</p>
  </div>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.ConfirmURL}}" style="background-color: #16a34a; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold; display: inline-block;">&#10003; Mark as Paid</a>
  </div>
  <div style="background-color: #fef3c7; padding: 15px; border-radius: 6px; margin: 20px 0;">
    <p style="margin: 0; font-size: 14px; color: #92400e;">
      <strong>Quick Action:</strong> Click the button above to mark this payment as paid.
      You'll stop receiving reminders for this payment immediately.
    </p>
  </div>
  <p style="color: #6b7280; font-size: 14px; text-align: center;">
    This is an automated reminder from your Reminder App.
    <a href="{{.DashboardURL}}" style="color: #2563eb;">Manage your reminders</a>
  </p>
</div>`

// Renderer turns a Notification into a Message for all channels.
type Renderer struct {
	currency string
	email    *template.Template
}

func NewRenderer(currency string) *Renderer {
	return &Renderer{
		currency: currency,
		email:    template.Must(template.New("email").Parse(emailTemplate)),
	}
}

func (r *Renderer) Render(n Notification) (*Message, error) {
	dueDate := n.DueDate.Format("Monday, January 2, 2006")

	amount := ""
	if n.Amount.Valid {
		amount = utils.FormatAmount(r.currency, n.Amount.Decimal)
	}

	category := categoryLabels[domain.CategoryOther]
	if domain.ValidCategory(n.Category) {
		category = categoryLabels[n.Category]
	}

	headline := fmt.Sprintf("Payment Reminder: %s", n.Title)
	if amount != "" {
		headline += fmt.Sprintf(" (%s)", amount)
	}
	headline += fmt.Sprintf(" is due on %s (%s)", dueDate, DueText(n.DaysUntil))

	var body bytes.Buffer
	err := r.email.Execute(&body, map[string]interface{}{
		"Title":        n.Title,
		"DueDate":      dueDate,
		"Amount":       amount,
		"Category":     category,
		"DueText":      DueText(n.DaysUntil),
		"ConfirmURL":   template.URL(n.ConfirmURL),
		"DashboardURL": template.URL(n.DashboardURL),
	})
	if err != nil {
		return nil, fmt.Errorf("render email: %w", err)
	}

	chat := fmt.Sprintf("🔔 %s\n\n💳 <b>Quick Action:</b>\n<a href=\"%s\">✓ Mark as Paid</a>\n\n"+
		"Click the link above to mark this payment as completed and stop future reminders.",
		html.EscapeString(headline), html.EscapeString(n.ConfirmURL))

	text := fmt.Sprintf("%s\n\nMark as Paid: %s\n\nClick link to mark payment complete and stop reminders.",
		headline, n.ConfirmURL)

	return &Message{
		Subject: subject(n),
		HTML:    body.String(),
		Chat:    chat,
		Text:    text,
	}, nil
}

func subject(n Notification) string {
	if n.Trigger == domain.TriggerOverdue {
		return "Overdue Payment: " + n.Title
	}
	return "Payment Reminder: " + n.Title
}

// DueText is the human phrasing of a days-until-due count.
func DueText(daysUntil int) string {
	switch {
	case daysUntil < -1:
		return fmt.Sprintf("%d days overdue", -daysUntil)
	case daysUntil == -1:
		return "1 day overdue"
	case daysUntil == 0:
		return "Due Today!"
	case daysUntil == 1:
		return "Due Tomorrow!"
	default:
		return fmt.Sprintf("%d days remaining", daysUntil)
	}
}

// stripSymbols removes emoji and pictographs from SMS text. Letters of any
// script, digits and currency signs are kept.
func stripSymbols(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.Is(unicode.So, r),
			unicode.Is(unicode.Variation_Selector, r),
			r == '\u200d':
			return -1
		}
		return r
	}, s)
}
