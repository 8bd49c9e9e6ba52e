// Package assistant is the public surface of the chat core: one call per
// inbound customer message, always answered.
package assistant

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/graph"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/memory"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/nlu"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/response"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// lockStripes bounds the number of mutexes serializing customers. Two
// customers may share a stripe; one customer never runs two turns at once.
const lockStripes = 256

type Config struct {
	Runner  graph.Runner
	Memory  model.MemoryStore
	Learner *nlu.Learner
}

type Service struct {
	runner  graph.Runner
	memory  model.MemoryStore
	learner *nlu.Learner
	now     func() time.Time

	locks [lockStripes]sync.Mutex
}

func New(cfg Config) (*Service, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("graph runner is nil")
	}
	if cfg.Memory == nil {
		return nil, fmt.Errorf("memory store is nil")
	}
	if cfg.Learner == nil {
		return nil, fmt.Errorf("learner is nil")
	}
	return &Service{runner: cfg.Runner, memory: cfg.Memory, learner: cfg.Learner, now: time.Now}, nil
}

func (s *Service) lock(customerID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(customerID))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// ProcessMessage answers one customer message. It never fails: unexpected
// errors and panics become a safe reply with the error intent.
func (s *Service) ProcessMessage(ctx context.Context, customerID, text string) (reply model.Reply) {
	unlock := s.lock(customerID)
	defer unlock()

	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			metrics.Panics.Inc()
			logx.Error().
				Str("customer_id", customerID).
				Str("panic", fmt.Sprint(r)).
				Msg("Recovered from panic while processing message")
			reply = s.failure(ctx, customerID)
		}
	}()

	text = strings.TrimSpace(text)
	a, err := s.runner.Run(ctx, model.Inbound{CustomerID: customerID, Text: text})
	if err != nil {
		logx.Error().Err(err).Str("customer_id", customerID).Msg("Error processing message")
		return s.failure(ctx, customerID)
	}

	s.learner.Observe(text, a.Candidate, a.Sentiment)
	metrics.MessagesProcessed.WithLabelValues(a.Candidate.Intent.String(), string(a.Candidate.Source)).Inc()
	metrics.MessageDuration.WithLabelValues(strconv.FormatBool(a.Escalation != nil)).Observe(s.now().Sub(start).Seconds())

	logx.Info().
		Str("customer_id", customerID).
		Str("intent", a.Candidate.Intent.String()).
		Int("confidence", a.Candidate.ConfidencePercent()).
		Str("sentiment", string(a.Sentiment.Sentiment)).
		Bool("escalated", a.Escalation != nil).
		Msg("Message processed")

	return model.Reply{
		IntentName:        a.Candidate.Intent,
		ConfidencePercent: a.Candidate.ConfidencePercent(),
		ReplyText:         a.Reply,
		Sentiment:         a.Sentiment,
	}
}

// failure builds the safe reply and still counts the visit, best effort.
func (s *Service) failure(ctx context.Context, customerID string) model.Reply {
	metrics.MessagesProcessed.WithLabelValues(model.IntentError.String(), "").Inc()
	func() {
		defer func() { _ = recover() }()
		mem, err := s.memory.Get(ctx, customerID)
		if err != nil || mem == nil {
			return
		}
		memory.Apply(mem, model.Candidate{Intent: model.IntentError}, model.NeutralSentiment(), s.now())
		if err := s.memory.Save(ctx, mem); err != nil {
			logx.Warn().Err(err).Str("customer_id", customerID).Msg("Error saving memory after failure")
		}
	}()
	return model.Reply{
		IntentName:        model.IntentError,
		ConfidencePercent: 0,
		ReplyText:         response.FallbackReply,
		Sentiment:         model.NeutralSentiment(),
	}
}

// Feedback records that the customer's last message meant corrected.
func (s *Service) Feedback(ctx context.Context, customerID, text string, corrected model.IntentName) error {
	if !corrected.Known() {
		return errx.New(fmt.Errorf("unknown intent %q", corrected), http.StatusBadRequest, "unknown intent")
	}

	unlock := s.lock(customerID)
	defer unlock()

	mem, err := s.memory.Get(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}
	if mem.LastIntent == corrected {
		return nil
	}
	s.learner.Correct(text, mem.LastIntent, corrected)
	logx.Debug().
		Str("customer_id", customerID).
		Str("from", mem.LastIntent.String()).
		Str("to", corrected.String()).
		Msg("Correction recorded")
	return nil
}

// Stats returns the learning statistics gathered so far.
func (s *Service) Stats() nlu.Stats {
	return s.learner.Stats()
}

// Patterns returns the most frequent learned key-phrase patterns.
func (s *Service) Patterns(limit int) []nlu.LearnedPattern {
	return s.learner.Patterns(limit)
}
