package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frontdesk/config"
	"frontdesk/models"
	"frontdesk/utils"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailService sends transactional mail through SendGrid.
type EmailService struct {
	client   *sendgrid.Client
	from     *mail.Email
	timezone func(t *models.Tenant) *time.Location
}

func NewEmailService() *EmailService {
	return &EmailService{
		client: sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey),
		from:   mail.NewEmail(config.AppConfig.EmailFromName, config.AppConfig.EmailFrom),
		timezone: func(t *models.Tenant) *time.Location {
			return t.Location()
		},
	}
}

func (s *EmailService) SendConfirmation(ctx context.Context, tenant *models.Tenant, appt *models.Appointment, language string) error {
	to := appt.Fields["email"]
	if to == "" {
		utils.GetLogger().Debug("no guest email collected, skipping confirmation",
			zap.String("appointmentId", appt.ID))
		return nil
	}

	when := appt.Start.In(s.timezone(tenant))
	var subject, body string
	if language == "es" {
		subject = fmt.Sprintf("Cita confirmada - %s", tenant.Name)
		body = fmt.Sprintf("Su cita con %s está confirmada para el %s.\n\n%s\n\nSi necesita cancelar o cambiar la cita, responda a este correo.",
			tenant.Name, when.Format("02/01/2006 15:04"), fieldLines(appt.Fields))
	} else {
		subject = fmt.Sprintf("Appointment confirmed - %s", tenant.Name)
		body = fmt.Sprintf("Your appointment with %s is confirmed for %s.\n\n%s\n\nIf you need to cancel or reschedule, reply to this email.",
			tenant.Name, when.Format("Monday, January 2 at 3:04 PM"), fieldLines(appt.Fields))
	}

	return s.send(ctx, mail.NewEmail(appt.Fields["name"], to), subject, body)
}

func (s *EmailService) SendAdminNotice(ctx context.Context, tenant *models.Tenant, appt *models.Appointment) error {
	if tenant.AdminEmail == "" {
		return nil
	}

	when := appt.Start.In(s.timezone(tenant))
	subject := fmt.Sprintf("New booking: %s on %s", appt.Fields["name"], when.Format("Jan 2 3:04 PM"))
	body := fmt.Sprintf("A new appointment was booked for %s.\n\nWhen: %s\n%s\nAppointment ID: %s",
		tenant.Name, when.Format("Monday, January 2 2006 at 3:04 PM"), fieldLines(appt.Fields), appt.ID)

	return s.send(ctx, mail.NewEmail(tenant.Name, tenant.AdminEmail), subject, body)
}

func (s *EmailService) send(ctx context.Context, to *mail.Email, subject, body string) error {
	msg := mail.NewSingleEmail(s.from, subject, to, body, "")
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	utils.GetLogger().Info("email sent",
		zap.String("to", to.Address),
		zap.String("subject", subject))
	return nil
}

func fieldLines(fields map[string]string) string {
	var b strings.Builder
	for _, key := range []string{"name", "email", "phone"} {
		if v := fields[key]; v != "" {
			fmt.Fprintf(&b, "%s: %s\n", labelFor(key), v)
		}
	}
	for k, v := range fields {
		if k == "name" || k == "email" || k == "phone" || v == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", labelFor(k), v)
	}
	return b.String()
}

func labelFor(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
