package core

import (
	"context"
	"fmt"
	"time"

	"devdash/internal/broker"
	"devdash/internal/repository"
	"devdash/pkg/logger"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

// ChatService defines the doctor side of the parent threads
type ChatService interface {
	// History returns the newest messages of a thread, newest first
	History(ctx context.Context, userID string) ([]models.ChatMessage, error)
	Send(ctx context.Context, userID, text string) (*models.ChatMessage, error)
	// Subscribe emits the current history immediately and again after every
	// change to the thread. The channel closes when ctx is done.
	Subscribe(ctx context.Context, userID string) (<-chan models.ChatBatch, error)
	MarkRead(ctx context.Context, userID string) (int64, error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	broker   broker.Broker
	doctorID string
	now      func() time.Time
}

// NewChatService creates a new chat service replying as doctorID
func NewChatService(chatRepo repository.ChatRepository, b broker.Broker, doctorID string) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		broker:   b,
		doctorID: doctorID,
		now:      time.Now,
	}
}

// History retrieves the newest messages of a thread
func (s *chatService) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	if !utils.ValidUserID(userID) {
		return nil, models.ErrInvalidInput
	}
	messages, err := s.chatRepo.ListRecent(ctx, userID, models.ChatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	return messages, nil
}

// Send stores a doctor reply and announces the change to subscribers
func (s *chatService) Send(ctx context.Context, userID, text string) (*models.ChatMessage, error) {
	if !utils.ValidUserID(userID) {
		return nil, models.ErrInvalidInput
	}
	body, err := utils.ValidateChatMessage(text)
	if err != nil {
		return nil, err
	}

	doctorID := s.doctorID
	message := &models.ChatMessage{
		UserID:     userID,
		DoctorID:   &doctorID,
		Message:    body,
		Timestamp:  s.now().UTC(),
		SenderType: models.SenderDoctor,
		Read:       false,
	}
	if err := s.chatRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	if err := s.broker.Publish(ctx, broker.ChatTopic(userID), []byte(message.ID)); err != nil {
		// the message is stored; subscribers catch up on their next update
		logger.WithFields(map[string]interface{}{"user_id": userID}).WithError(err).Warn("chat publish failed")
	}
	return message, nil
}

// MarkRead flags the parent's messages in a thread as read by the doctor
func (s *chatService) MarkRead(ctx context.Context, userID string) (int64, error) {
	if !utils.ValidUserID(userID) {
		return 0, models.ErrInvalidInput
	}
	n, err := s.chatRepo.MarkRead(ctx, userID, models.SenderUser)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	if n > 0 {
		if err := s.broker.Publish(ctx, broker.ChatTopic(userID), []byte("read")); err != nil {
			logger.WithFields(map[string]interface{}{"user_id": userID}).WithError(err).Warn("chat read publish failed")
		}
	}
	return n, nil
}

func (s *chatService) Subscribe(ctx context.Context, userID string) (<-chan models.ChatBatch, error) {
	if !utils.ValidUserID(userID) {
		return nil, models.ErrInvalidInput
	}
	updates, err := s.broker.Subscribe(ctx, broker.ChatTopic(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to chat: %w", err)
	}

	out := make(chan models.ChatBatch, 1)
	go func() {
		defer close(out)
		if !s.emit(ctx, out, userID) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-updates:
				if !ok {
					return
				}
				if !s.emit(ctx, out, userID) {
					return
				}
			}
		}
	}()
	return out, nil
}

// emit re-reads the thread and sends one batch; false means stop
func (s *chatService) emit(ctx context.Context, out chan<- models.ChatBatch, userID string) bool {
	messages, err := s.chatRepo.ListRecent(ctx, userID, models.ChatHistoryLimit)
	if err != nil {
		if utils.IsContextError(err) {
			return false
		}
		logger.Degraded("chat_messages", err)
		return true
	}
	select {
	case out <- models.ChatBatch{UserID: userID, Messages: messages, SentAt: s.now()}:
		return true
	case <-ctx.Done():
		return false
	}
}
