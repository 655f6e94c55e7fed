package notification

import (
	"bytes"
	"html/template"
)

var bookingConfirmedTmpl = template.Must(template.New("booking_confirmed").Parse(`<h2>Your booking is confirmed</h2>
<p>Dear {{.GuestName}},</p>
<p>Booking <strong>{{.BookingCode}}</strong> from {{.CheckIn}} to {{.CheckOut}} is confirmed.</p>
<p>Total: {{.Total}} {{.Currency}}{{if .Deposit}} (paid {{.Deposit}} {{.Currency}}){{end}}</p>
<p>You have earned {{.LoyaltyPoints}} loyalty points.</p>`))

var bookingCreatedTmpl = template.Must(template.New("booking_created").Parse(`<h2>We received your booking</h2>
<p>Dear {{.GuestName}},</p>
<p>Booking <strong>{{.BookingCode}}</strong> from {{.CheckIn}} to {{.CheckOut}} is awaiting payment of {{.Deposit}} {{.Currency}}.</p>`))

type BookingMail struct {
	GuestName     string
	BookingCode   string
	CheckIn       string
	CheckOut      string
	Total         string
	Deposit       string
	Currency      string
	LoyaltyPoints int
}

func BookingConfirmedEmail(to string, d BookingMail) (Email, error) {
	return render(to, d.GuestName, "Booking "+d.BookingCode+" confirmed", bookingConfirmedTmpl, d)
}

func BookingReceivedEmail(to string, d BookingMail) (Email, error) {
	return render(to, d.GuestName, "Booking "+d.BookingCode+" received", bookingCreatedTmpl, d)
}

func render(to, name, subject string, t *template.Template, data any) (Email, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return Email{}, err
	}
	return Email{To: to, ToName: name, Subject: subject, HTMLBody: buf.String()}, nil
}
