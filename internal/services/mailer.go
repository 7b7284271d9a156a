package services

import (
	"fmt"

	"github.com/nudgr/delegation-api/internal/models"
	"gopkg.in/gomail.v2"
)

const taskAssignedTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
    <h2 style="color: #007bff; text-align: center;">New Task Assigned</h2>
    <p style="font-size: 16px; color: #555;">A new task has been assigned to you. Below are the details:</p>

    <table style="width: 100%%; border-collapse: collapse; margin-top: 10px;">
        <tr>
            <td style="padding: 10px; border-bottom: 1px solid #ddd; font-weight: bold;">Task Name:</td>
            <td style="padding: 10px; border-bottom: 1px solid #ddd;">%s</td>
        </tr>
        <tr>
            <td style="padding: 10px; border-bottom: 1px solid #ddd; font-weight: bold;">Deadline:</td>
            <td style="padding: 10px; border-bottom: 1px solid #ddd; font-weight: bold;">%s</td>
        </tr>
        <tr>
            <td style="padding: 10px; font-weight: bold;">Priority:</td>
            <td style="padding: 10px;">%s</td>
        </tr>
    </table>

    <p style="margin-top: 20px; text-align: center;">
        <a href="%s/tasks/%d"
           style="padding: 10px 15px; background-color: #007bff; color: #fff; text-decoration: none; border-radius: 5px;">
           View Task
        </a>
    </p>

    <p style="font-size: 14px; color: #777; text-align: center; margin-top: 20px;">
        This is an automated email. Please do not reply.
    </p>
</div>`

// SMTPMailer sends task-assignment notifications over SMTP.
type SMTPMailer struct {
	dialer         *gomail.Dialer
	from           string
	frontendOrigin string
}

// NewSMTPMailer creates a Notifier backed by the given SMTP account.
func NewSMTPMailer(host string, port int, user, pass, frontendOrigin string) *SMTPMailer {
	return &SMTPMailer{
		dialer:         gomail.NewDialer(host, port, user, pass),
		from:           fmt.Sprintf("\"Nudgr\" <%s>", user),
		frontendOrigin: frontendOrigin,
	}
}

// SendTaskAssigned delivers the task-assigned email to the recipient.
func (m *SMTPMailer) SendTaskAssigned(recipientEmail string, task *models.Task) error {
	deadline := task.Deadline.Format("Monday, 02 January 2006, 03:04 PM")
	body := fmt.Sprintf(taskAssignedTemplate, task.Name, deadline, task.Priority, m.frontendOrigin, task.ID)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipientEmail)
	msg.SetHeader("Subject", "New Task Assigned")
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}
