package utils

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/verdant-app/verdant-server/config"
)

// checkupReadyMessage composes the checkup completion notification.
func checkupReadyMessage() (subject, text, html string) {
	subject = "Your plant checkup is ready"
	text = "Your plant checkup has finished. Open the app to see the results and your new care tasks."
	html = "<p>" + text + "</p>"
	return subject, text, html
}

// SendCheckupReadyEmail notifies a user that their plant checkup
// finished processing.
func SendCheckupReadyEmail(toName, toEmail string) error {
	subject, text, html := checkupReadyMessage()
	return SendEmail(toName, toEmail, subject, text, html)
}

// SendEmail sends an email using SendGrid
func SendEmail(toName, toEmail, subject, textContent, htmlContent string) error {
	if config.SendGridKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}

	from := mail.NewEmail("Verdant", config.SenderEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(config.SendGridKey)

	response, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}

	if response.StatusCode >= 400 {
		log.Printf("SendGrid API Error: Status Code %d, Body: %s", response.StatusCode, response.Body)
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	log.Printf("Email sent successfully to %s. Status Code: %d", toEmail, response.StatusCode)
	return nil
}
