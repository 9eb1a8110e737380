package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/pkg/logger"
	"ai-interview-be/internal/repository/unitofwork"
	"ai-interview-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService advances the practice lifecycle off the request path: when
// an analysis-completed message reports full coverage it marks the practice
// completed and notifies the user's connected clients.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	hub *websocket.Hub,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		hub:        hub,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AnalysisCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer_service", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages must not retry forever
		return
	}

	if payload.FullyAnalyzed {
		uow := cs.uowFactory.NewUnitOfWork(ctx)
		if err := uow.PracticeRepository().UpdateStatus(ctx, payload.PracticeId, entity.PracticeStatusCompleted); err != nil {
			cs.logger.Error("consumer_service", "failed to mark practice completed", map[string]interface{}{
				"practice_id": payload.PracticeId,
				"error":       err.Error(),
			})
			msg.Nack()
			return
		}
		cs.logger.Info("consumer_service", "practice completed", map[string]interface{}{
			"practice_id": payload.PracticeId,
		})
	}

	if cs.hub != nil {
		idx := payload.QuestionIndex
		notification := websocket.Notification{
			Type:          "analysis_completed",
			PracticeId:    payload.PracticeId,
			QuestionIndex: &idx,
			Title:         "Analysis ready",
			Message:       fmt.Sprintf("Question %d analysis finished with a composite score of %.1f.", payload.QuestionIndex+1, payload.CompositeScore),
			Data: map[string]interface{}{
				"composite_score": payload.CompositeScore,
				"fully_analyzed":  payload.FullyAnalyzed,
			},
		}
		if payload.FullyAnalyzed {
			notification.Type = "practice_completed"
			notification.Title = "Practice complete"
			notification.Message = "Every question has been analyzed. Your report is ready to synthesize."
		}
		cs.hub.Send(payload.UserId, notification)
	}

	msg.Ack()
}
