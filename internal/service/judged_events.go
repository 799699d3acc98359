package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/algorank/algorank-api/internal/dto"
)

const judgedEventBufferSize = 16

// JudgedEventService fans out judged-submission events to live standings
// subscribers. Local subscribers get the event directly; NATS carries it to
// other nodes serving the same contest.
type JudgedEventService interface {
	JudgedEventPublisher
	Subscribe(contestID string) (<-chan dto.JudgedEvent, func())
	Start(ctx context.Context)
}

type judgedEnvelope struct {
	Source string          `json:"source"`
	Event  dto.JudgedEvent `json:"event"`
	SentAt time.Time       `json:"sent_at"`
}

// NewJudgedEventService builds the event fan-out. natsConn may be nil for
// single-node deployments.
func NewJudgedEventService(natsConn *nats.Conn, subject string, logger zerolog.Logger) JudgedEventService {
	if subject == "" {
		subject = "algorank.submissions.judged"
	}
	return &judgedEventService{
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "judged_event_service").Logger(),
		broker: &judgedBroker{
			subscribers: make(map[string]map[chan dto.JudgedEvent]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

type judgedEventService struct {
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	broker  *judgedBroker
	nodeID  string
}

func (s *judgedEventService) Start(ctx context.Context) {
	if s.nats == nil {
		return
	}

	sub, err := s.nats.Subscribe(s.subject, func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to judged events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain judged events subscription")
		}
	}()
}

func (s *judgedEventService) PublishJudged(_ context.Context, event dto.JudgedEvent) error {
	s.broker.broadcast(event.ContestID, event)

	if s.nats == nil {
		return nil
	}

	payload, err := json.Marshal(judgedEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.nats.Publish(s.subject, payload)
}

func (s *judgedEventService) Subscribe(contestID string) (<-chan dto.JudgedEvent, func()) {
	channel := make(chan dto.JudgedEvent, judgedEventBufferSize)
	s.broker.subscribe(contestID, channel)

	cleanup := func() {
		s.broker.unsubscribe(contestID, channel)
	}
	return channel, cleanup
}

func (s *judgedEventService) handleEvent(payload []byte) {
	var envelope judgedEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid judged event payload")
		return
	}
	// Events this node published already reached local subscribers.
	if envelope.Source == s.nodeID {
		return
	}
	s.broker.broadcast(envelope.Event.ContestID, envelope.Event)
}

type judgedBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.JudgedEvent]struct{}
}

func (b *judgedBroker) subscribe(contestID string, ch chan dto.JudgedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[contestID]; !exists {
		b.subscribers[contestID] = make(map[chan dto.JudgedEvent]struct{})
	}
	b.subscribers[contestID][ch] = struct{}{}
}

func (b *judgedBroker) unsubscribe(contestID string, ch chan dto.JudgedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[contestID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, contestID)
		}
	}
}

func (b *judgedBroker) broadcast(contestID string, event dto.JudgedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[contestID] {
		select {
		case ch <- event:
		default:
		}
	}
}
