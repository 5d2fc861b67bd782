package domain

import "time"

// Well-known template ids seeded at bootstrap and referenced by feature code.
const (
	TemplatePasswordRecovery = "password-recovery" // {{otp}}
	TemplateConfirmEmail     = "confirm-email"     // {{token}}
	TemplateOTPSMS           = "otp-sms"           // {{otp}}
	TemplateUrgentNews       = "urgent-news"       // {{title}}
)

// EmailTemplate holds the subject and HTML body of a pool email.
// Placeholders use the literal {{key}} form.
type EmailTemplate struct {
	TemplateID  string    `json:"id" dynamodbav:"template_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	Subject     string    `json:"subject" dynamodbav:"subject"`
	HTML        string    `json:"html" dynamodbav:"html"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SMSTemplate struct {
	TemplateID string    `json:"id" dynamodbav:"template_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Message    string    `json:"message" dynamodbav:"message"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// PushTemplate carries an optional catalogue Action which is merged into the
// push payload's extra data at enqueue time.
type PushTemplate struct {
	TemplateID string    `json:"id" dynamodbav:"template_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Title      string    `json:"title" dynamodbav:"title"`
	Message    string    `json:"message" dynamodbav:"message"`
	Action     string    `json:"action,omitempty" dynamodbav:"action"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}
