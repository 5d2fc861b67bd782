package http

import (
	"github.com/go-api-pool/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-api-pool/internal/infrastructure/jwt"
	s3infra "github.com/go-api-pool/internal/infrastructure/s3"
	"github.com/go-api-pool/internal/infrastructure/smtp"
	"github.com/go-api-pool/internal/infrastructure/sns"
)

// Deps holds the infrastructure the router wires into services. Each service
// narrows these down to the interfaces it actually needs.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	StatusRepo       *dynamo.StatusRepo
	DeviceRepo       *dynamo.DeviceRepo
	NotificationRepo *dynamo.NotificationRepo
	FileRepo         *dynamo.FileRepo
	VerificationRepo *dynamo.VerificationRepo
	AppVersionRepo   *dynamo.AppVersionRepo
	RoleRepo         *dynamo.RoleRepo
	NewsRepo         *dynamo.NewsRepo

	EmailPoolRepo     *dynamo.EmailPoolRepo
	SMSPoolRepo       *dynamo.SMSPoolRepo
	PushPoolRepo      *dynamo.PushPoolRepo
	EmailSentRepo     *dynamo.EmailSentRepo
	SMSSentRepo       *dynamo.SMSSentRepo
	PushSentRepo      *dynamo.PushSentRepo
	EmailTemplateRepo *dynamo.EmailTemplateRepo
	SMSTemplateRepo   *dynamo.SMSTemplateRepo
	PushTemplateRepo  *dynamo.PushTemplateRepo

	S3Store     *s3infra.Store
	Mailer      smtp.Mailer
	SNSSender   *sns.Sender
	JWTProvider *jwtinfra.Provider
}
