package sns

import (
	"context"
	"encoding/json"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-api-pool/internal/config"
)

// SMSSender sends SMS messages via AWS SNS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// PushSender publishes push notifications to a device's platform endpoint.
type PushSender interface {
	SendPush(ctx context.Context, deviceToken, message string, data map[string]string) error
}

func NewSender(cfg *config.Config) (*Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Sender{client: sns.NewFromConfig(awsCfg)}, nil
}

// Sender implements SMSSender and PushSender over a single SNS client.
type Sender struct {
	client *sns.Client
}

func (s *Sender) SendSMS(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	return err
}

// SendPush publishes the message to the device endpoint. Extra data is
// embedded in a JSON payload next to the message body.
func (s *Sender) SendPush(ctx context.Context, deviceToken, message string, data map[string]string) error {
	payload := map[string]interface{}{"message": message}
	if len(data) > 0 {
		payload["data"] = data
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := string(body)
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TargetArn: &deviceToken,
		Message:   &msg,
	})
	return err
}
