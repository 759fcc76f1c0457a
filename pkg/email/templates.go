package email

import (
	"fmt"
)

// BookingEmailData contains the data needed for appointment email templates.
type BookingEmailData struct {
	PatientName       string
	Email             string
	ClinicName        string
	PractitionerName  string
	Date              string
	Window            string
	AppointmentNumber int
}

// BuildBookingConfirmationEmail creates a confirmation message for a freshly
// booked appointment.
func BuildBookingConfirmationEmail(data BookingEmailData) Message {
	clinicName := data.ClinicName
	if clinicName == "" {
		clinicName = "Cliniva"
	}

	patientName := data.PatientName
	if patientName == "" {
		patientName = "there"
	}

	subject := fmt.Sprintf("Your appointment at %s is confirmed", clinicName)

	textBody := fmt.Sprintf(`Hi %s,

Your appointment at %s has been booked.

Date: %s
Time: %s
Practitioner: %s
Queue number: #%d

Please arrive a few minutes before your window starts.

Thanks,
%s`,
		patientName, clinicName, data.Date, data.Window, data.PractitionerName, data.AppointmentNumber, clinicName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Your appointment at <strong>%s</strong> has been booked.</p>
    <table style="width: 100%%; background-color: #f3f4f6; border-radius: 6px; padding: 10px; margin: 20px 0;">
        <tr><td style="padding: 6px 15px; color: #6b7280;">Date</td><td style="padding: 6px 15px;"><strong>%s</strong></td></tr>
        <tr><td style="padding: 6px 15px; color: #6b7280;">Time</td><td style="padding: 6px 15px;"><strong>%s</strong></td></tr>
        <tr><td style="padding: 6px 15px; color: #6b7280;">Practitioner</td><td style="padding: 6px 15px;"><strong>%s</strong></td></tr>
        <tr><td style="padding: 6px 15px; color: #6b7280;">Queue number</td><td style="padding: 6px 15px;"><strong>#%d</strong></td></tr>
    </table>
    <p>Please arrive a few minutes before your window starts.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>%s</p>
</body>
</html>`,
		patientName, clinicName, data.Date, data.Window, data.PractitionerName, data.AppointmentNumber, clinicName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildCancellationEmail creates a notice for a cancelled appointment.
func BuildCancellationEmail(data BookingEmailData) Message {
	clinicName := data.ClinicName
	if clinicName == "" {
		clinicName = "Cliniva"
	}

	patientName := data.PatientName
	if patientName == "" {
		patientName = "there"
	}

	subject := fmt.Sprintf("Your appointment at %s was cancelled", clinicName)

	textBody := fmt.Sprintf(`Hi %s,

Your appointment at %s on %s (%s) has been cancelled.

If this was a mistake, please contact the clinic to book a new visit.

Thanks,
%s`,
		patientName, clinicName, data.Date, data.Window, clinicName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #dc2626;">Hi %s,</h2>
    <p>Your appointment at <strong>%s</strong> on <strong>%s</strong> (%s) has been cancelled.</p>
    <p>If this was a mistake, please contact the clinic to book a new visit.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>%s</p>
</body>
</html>`,
		patientName, clinicName, data.Date, data.Window, clinicName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
