package service

import (
	"context"
	"encoding/json"

	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IUsageConsumerService interface {
	Consume(ctx context.Context) error
}

// usageConsumerService records answered-chat usage off the request path.
type usageConsumerService struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewUsageConsumerService(pubSub *gochannel.GoChannel, log logger.ILogger) IUsageConsumerService {
	return &usageConsumerService{
		pubSub: pubSub,
		logger: log,
	}
}

func (cs *usageConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, events.TopicChatAnswered)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *usageConsumerService) processMessage(msg *message.Message) {
	var event events.ChatAnsweredEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("usage", "failed to unmarshal usage event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("usage", "chat answered", map[string]interface{}{
		"session_id":      event.SessionId,
		"confidence":      event.ConfidenceScore,
		"retrieved_count": event.RetrievedChunkCount,
		"web_search_used": event.WebSearchUsed,
		"answer_length":   event.AnswerLength,
	})
	msg.Ack()
}
