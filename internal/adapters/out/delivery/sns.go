package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/core/domain/model/notification"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsPublisher is the subset of *sns.Client the delivery needs.
type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Envelope is the JSON body published for every notification.
type Envelope struct {
	IntentID    string `json:"intent_id"`
	OrderID     string `json:"order_id"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Destination string `json:"destination"`
	Text        string `json:"text"`
	DeliveryURL string `json:"delivery_url"`
}

// SNSDelivery publishes rendered notifications to an SNS topic for a
// downstream sender to pick up.
type SNSDelivery struct {
	client   snsPublisher
	topicARN string
}

func NewSNSDelivery(client snsPublisher, topicARN string) *SNSDelivery {
	return &SNSDelivery{client: client, topicARN: topicARN}
}

// NewSNSDeliveryFromRegion loads the default AWS credential chain.
func NewSNSDeliveryFromRegion(ctx context.Context, region, topicARN string) (*SNSDelivery, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSDelivery(sns.NewFromConfig(cfg), topicARN), nil
}

func (d *SNSDelivery) Deliver(ctx context.Context, intent *notification.Intent, msg notification.Message) error {
	body, err := json.Marshal(Envelope{
		IntentID:    intent.ID().String(),
		OrderID:     intent.OrderID().String(),
		Type:        intent.Type().String(),
		Priority:    intent.Priority().String(),
		Destination: intent.Destination(),
		Text:        msg.Text,
		DeliveryURL: msg.DeliveryURL,
	})
	if err != nil {
		return err
	}

	_, err = d.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(d.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(intent.Type().String()),
			},
			"priority": {
				DataType:    aws.String("String"),
				StringValue: aws.String(intent.Priority().String()),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", intent.ID(), err)
	}
	return nil
}
