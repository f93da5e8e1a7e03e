package mailer

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Sender delivers transactional email. Callers treat delivery as fire-and-forget:
// a failed send is logged at the call site and never fails the surrounding operation.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SESSender sends email through AWS SESv2
type SESSender struct {
	client *sesv2.Client
	from   string
}

// NewSESSender builds a sender using the default AWS credential chain
func NewSESSender(ctx context.Context, from string) (*SESSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &SESSender{client: sesv2.NewFromConfig(cfg), from: from}, nil
}

func (s *SESSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	return err
}

// LogSender is a development fallback that prints instead of delivering.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("mailer: would send %q to %s", subject, to)
	return nil
}
