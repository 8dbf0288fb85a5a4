package services

import (
	"context"
	"fmt"
	"strings"

	"milk-backend/models"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier sends customer-facing confirmations.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, r models.Reservation) error
}

type NoopNotifier struct{}

func (NoopNotifier) ReservationConfirmed(context.Context, models.Reservation) error { return nil }

// SMSNotifier sends reservation confirmations through Twilio. Phones in
// E.164 form get a WhatsApp message when a WhatsApp sender is configured.
type SMSNotifier struct {
	client       *twilio.RestClient
	from         string
	whatsAppFrom string
	log          logrus.FieldLogger
}

func NewSMSNotifier(accountSid, authToken, from, whatsAppFrom string, log logrus.FieldLogger) *SMSNotifier {
	return &SMSNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from:         from,
		whatsAppFrom: whatsAppFrom,
		log:          log.WithField("service", "notifier"),
	}
}

func (n *SMSNotifier) ReservationConfirmed(ctx context.Context, r models.Reservation) error {
	phone := strings.TrimSpace(r.Phone)
	if phone == "" {
		return nil
	}

	to, from, channel := phone, n.from, "sms"
	if strings.HasPrefix(phone, "+") && n.whatsAppFrom != "" {
		to, from, channel = "whatsapp:"+phone, "whatsapp:"+n.whatsAppFrom, "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(reservationMessage(r))

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", channel, phone, err)
	}
	if resp.Sid != nil {
		n.log.WithFields(logrus.Fields{"sid": *resp.Sid, "channel": channel, "reservationId": r.ID}).Info("reservation confirmation sent")
	}
	return nil
}

func reservationMessage(r models.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Milk: potwierdzamy rezerwację %s o %s", r.Date, r.Time)
	if r.Guests != "" {
		fmt.Fprintf(&b, ", osoby: %s", r.Guests)
	}
	if r.Room != "" {
		fmt.Fprintf(&b, ", sala: %s", r.Room)
	}
	b.WriteString(". Do zobaczenia!")
	return b.String()
}
