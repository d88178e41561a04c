package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swachhsetu/internal/ai"
	"swachhsetu/internal/events"
	"swachhsetu/internal/model"
	"swachhsetu/internal/realtime"
)

const (
	aiServiceForensic   = "forensic"
	aiServiceLinguistic = "linguistic"
)

// LinguisticResult is the analysis returned to the client. Fallback is set
// when the AI service failed and the transcript is echoed back untranslated.
type LinguisticResult struct {
	Result   json.RawMessage
	Fallback bool
}

type linguisticFallback struct {
	Transcript     string `json:"transcript"`
	TranslatedText string `json:"translatedText"`
}

// AIService proxies the AI service and reports job milestones to the caller.
type AIService interface {
	Forensic(ctx context.Context, userID uuid.UUID, image ai.Upload) (json.RawMessage, error)
	Linguistic(ctx context.Context, userID uuid.UUID, transcript, language string) (*LinguisticResult, error)
	ChatGreeting(ctx context.Context) (json.RawMessage, error)
	Chat(ctx context.Context, message, sessionID string) (json.RawMessage, error)
	HandleProgress(ctx context.Context, progress events.AIProgress) error
}

type aiService struct {
	analyzer      ai.Analyzer
	notifications NotificationService
	hub           realtime.Emitter
	log           zerolog.Logger
	newJobID      func() string
}

// NewAIService creates an AI service.
func NewAIService(analyzer ai.Analyzer, notifications NotificationService, hub realtime.Emitter, log zerolog.Logger) AIService {
	return &aiService{
		analyzer:      analyzer,
		notifications: notifications,
		hub:           hub,
		log:           log,
		newJobID:      func() string { return uuid.NewString() },
	}
}

func (s *aiService) Forensic(ctx context.Context, userID uuid.UUID, image ai.Upload) (json.RawMessage, error) {
	job := s.newJobID()
	s.progress(userID, job, aiServiceForensic, 10, "Uploading image")

	result, err := s.analyzer.Forensic(ctx, image)
	if err != nil {
		s.failed(ctx, userID, job, aiServiceForensic, err)
		return nil, fmt.Errorf("forensic analysis: %w", err)
	}
	s.completed(ctx, userID, job, aiServiceForensic, result)
	return result, nil
}

// Linguistic never fails on upstream errors; it falls back to echoing the transcript.
func (s *aiService) Linguistic(ctx context.Context, userID uuid.UUID, transcript, language string) (*LinguisticResult, error) {
	job := s.newJobID()
	s.progress(userID, job, aiServiceLinguistic, 10, "Analyzing transcript")

	result, err := s.analyzer.Linguistic(ctx, transcript, language)
	if err != nil {
		s.failed(ctx, userID, job, aiServiceLinguistic, err)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, err
		}
		fallback, merr := json.Marshal(linguisticFallback{Transcript: transcript, TranslatedText: transcript})
		if merr != nil {
			return nil, merr
		}
		return &LinguisticResult{Result: fallback, Fallback: true}, nil
	}
	s.completed(ctx, userID, job, aiServiceLinguistic, result)
	return &LinguisticResult{Result: result}, nil
}

func (s *aiService) ChatGreeting(ctx context.Context) (json.RawMessage, error) {
	return s.analyzer.ChatGreeting(ctx)
}

func (s *aiService) Chat(ctx context.Context, message, sessionID string) (json.RawMessage, error) {
	return s.analyzer.Chat(ctx, message, sessionID)
}

// HandleProgress fans a pipeline milestone out to the job owner. Completed and
// failed milestones also leave a notification, deduped on the milestone id.
func (s *aiService) HandleProgress(ctx context.Context, p events.AIProgress) error {
	if p.UserID == uuid.Nil {
		return events.Permanent(errors.New("ai progress without user"))
	}
	data := map[string]interface{}{
		"jobId":    p.JobID,
		"service":  p.Service,
		"progress": p.Progress,
		"message":  p.Message,
	}
	if p.Result != nil {
		data["result"] = p.Result
	}

	switch p.Stage {
	case events.StageProgress:
		s.hub.ToUser(p.UserID, realtime.EventAIProgress, data)
		return nil
	case events.StageCompleted:
		s.hub.ToUser(p.UserID, realtime.EventAICompleted, data)
	case events.StageFailed:
		s.hub.ToUser(p.UserID, realtime.EventAIFailed, data)
	default:
		return events.Permanent(fmt.Errorf("unknown ai stage %q", p.Stage))
	}

	eventID := p.EventID
	if eventID == "" {
		eventID = fmt.Sprintf("ai:%s:%s", p.JobID, p.Stage)
	}
	_, err := s.notifications.Notify(ctx, p.UserID, milestoneEvent(eventID, p.Service, p.Stage, p.Message))
	return err
}

func (s *aiService) progress(userID uuid.UUID, job, service string, pct int, message string) {
	s.hub.ToUser(userID, realtime.EventAIProgress, map[string]interface{}{
		"jobId":    job,
		"service":  service,
		"progress": pct,
		"message":  message,
	})
}

func (s *aiService) completed(ctx context.Context, userID uuid.UUID, job, service string, result json.RawMessage) {
	s.hub.ToUser(userID, realtime.EventAICompleted, map[string]interface{}{
		"jobId":    job,
		"service":  service,
		"progress": 100,
		"result":   result,
	})
	s.notify(ctx, userID, milestoneEvent("ai:"+job+":"+events.StageCompleted, service, events.StageCompleted, ""))
}

func (s *aiService) failed(ctx context.Context, userID uuid.UUID, job, service string, cause error) {
	s.log.Warn().Err(cause).Str("service", service).Str("job_id", job).Msg("ai analysis failed")
	s.hub.ToUser(userID, realtime.EventAIFailed, map[string]interface{}{
		"jobId":   job,
		"service": service,
		"message": "analysis failed",
	})
	s.notify(ctx, userID, milestoneEvent("ai:"+job+":"+events.StageFailed, service, events.StageFailed, ""))
}

func (s *aiService) notify(ctx context.Context, userID uuid.UUID, event model.Event) {
	// The request context may already be cancelled on timeout; the record still has to land.
	if _, err := s.notifications.Notify(context.WithoutCancel(ctx), userID, event); err != nil {
		s.log.Error().Err(err).Str("event_id", event.ID).Msg("notify ai milestone")
	}
}

func milestoneEvent(id, service, stage, message string) model.Event {
	event := model.Event{
		ID:   id,
		Type: model.EventAIMilestone,
		Data: map[string]interface{}{"service": service, "stage": stage},
	}
	switch stage {
	case events.StageCompleted:
		event.Title = "Analysis complete"
		event.Message = fmt.Sprintf("Your %s analysis is ready.", service)
	default:
		event.Title = "Analysis failed"
		event.Message = fmt.Sprintf("Your %s analysis could not be completed.", service)
		event.Priority = model.PriorityHigh
	}
	if message != "" {
		event.Message = message
	}
	return event
}
