package infra

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher mirrors role-wide and broadcast events to an SNS topic so that
// mobile push subscribers receive them.
type SNSPublisher struct {
	client   *sns.Client
	topicArn string
}

// NewSNSPublisher returns nil when topicArn is empty; callers treat nil as disabled.
func NewSNSPublisher(cfg sdkaws.Config, endpoint, topicArn string) *SNSPublisher {
	if topicArn == "" {
		return nil
	}
	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = sdkaws.String(endpoint)
		}
	})
	return &SNSPublisher{client: client, topicArn: topicArn}
}

// Publish sends payload as JSON; evento goes into a message attribute so
// subscriptions can filter on it.
func (p *SNSPublisher) Publish(ctx context.Context, evento string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sns: marshal: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(p.topicArn),
		Message:  sdkaws.String(string(data)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"evento": {DataType: sdkaws.String("String"), StringValue: sdkaws.String(evento)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", p.topicArn, err)
	}
	return nil
}
