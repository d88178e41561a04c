package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"swachhsetu/internal/ai"
	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/events"
	"swachhsetu/internal/model"
	"swachhsetu/internal/realtime"
)

func milestone(stage string) interface{} {
	return mock.MatchedBy(func(e model.Event) bool {
		return e.Type == model.EventAIMilestone && e.Data["stage"] == stage
	})
}

func TestAIService_ForensicEmitsProgressAndCompletion(t *testing.T) {
	analyzer := new(MockAnalyzer)
	notifications := new(MockNotificationService)
	userID := uuid.New()
	hub := newRecordingEmitter(userID)
	svc := NewAIService(analyzer, notifications, hub, zerolog.Nop())

	result := json.RawMessage(`{"isAuthentic":true}`)
	analyzer.On("Forensic", mock.Anything, mock.AnythingOfType("ai.Upload")).Return(result, nil)
	notifications.On("Notify", mock.Anything, userID, milestone(events.StageCompleted)).Return(&model.Notification{}, nil)

	got, err := svc.Forensic(context.Background(), userID, ai.Upload{Filename: "bin.jpg"})

	require.NoError(t, err)
	assert.JSONEq(t, string(result), string(got))
	assert.Equal(t, []string{realtime.EventAIProgress, realtime.EventAICompleted}, hub.events(realtime.UserRoom(userID)))
	notifications.AssertExpectations(t)
}

func TestAIService_ForensicFailure(t *testing.T) {
	analyzer := new(MockAnalyzer)
	notifications := new(MockNotificationService)
	userID := uuid.New()
	hub := newRecordingEmitter(userID)
	svc := NewAIService(analyzer, notifications, hub, zerolog.Nop())

	analyzer.On("Forensic", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUpstream)
	notifications.On("Notify", mock.Anything, userID, milestone(events.StageFailed)).Return(&model.Notification{}, nil)

	_, err := svc.Forensic(context.Background(), userID, ai.Upload{Filename: "bin.jpg"})

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, []string{realtime.EventAIProgress, realtime.EventAIFailed}, hub.events(realtime.UserRoom(userID)))
	notifications.AssertExpectations(t)
}

func TestAIService_LinguisticFallsBackOnTimeout(t *testing.T) {
	analyzer := new(MockAnalyzer)
	notifications := new(MockNotificationService)
	userID := uuid.New()
	svc := NewAIService(analyzer, notifications, newRecordingEmitter(userID), zerolog.Nop())

	timeout := errors.Join(apperrors.ErrUpstream, context.DeadlineExceeded)
	analyzer.On("Linguistic", mock.Anything, "kachra pada hai", "hi").Return(nil, timeout)
	notifications.On("Notify", mock.Anything, userID, milestone(events.StageFailed)).Return(&model.Notification{}, nil)

	res, err := svc.Linguistic(context.Background(), userID, "kachra pada hai", "hi")

	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.JSONEq(t, `{"transcript":"kachra pada hai","translatedText":"kachra pada hai"}`, string(res.Result))
}

func TestAIService_LinguisticSuccess(t *testing.T) {
	analyzer := new(MockAnalyzer)
	notifications := new(MockNotificationService)
	userID := uuid.New()
	svc := NewAIService(analyzer, notifications, newRecordingEmitter(userID), zerolog.Nop())

	analyzer.On("Linguistic", mock.Anything, "garbage", "en").Return(json.RawMessage(`{"category":"waste"}`), nil)
	notifications.On("Notify", mock.Anything, userID, milestone(events.StageCompleted)).Return(&model.Notification{}, nil)

	res, err := svc.Linguistic(context.Background(), userID, "garbage", "en")

	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.JSONEq(t, `{"category":"waste"}`, string(res.Result))
}

func TestAIService_HandleProgress(t *testing.T) {
	userID := uuid.New()

	t.Run("progress is pushed only", func(t *testing.T) {
		notifications := new(MockNotificationService)
		hub := newRecordingEmitter(userID)
		svc := NewAIService(new(MockAnalyzer), notifications, hub, zerolog.Nop())

		err := svc.HandleProgress(context.Background(), events.AIProgress{
			JobID: "job-1", UserID: userID, Service: "forensic", Stage: events.StageProgress, Progress: 40,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{realtime.EventAIProgress}, hub.events(realtime.UserRoom(userID)))
		notifications.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completion notifies with the milestone id", func(t *testing.T) {
		notifications := new(MockNotificationService)
		hub := newRecordingEmitter(userID)
		svc := NewAIService(new(MockAnalyzer), notifications, hub, zerolog.Nop())
		notifications.On("Notify", mock.Anything, userID, mock.MatchedBy(func(e model.Event) bool {
			return e.ID == "ai:job-1:completed"
		})).Return(&model.Notification{}, nil)

		err := svc.HandleProgress(context.Background(), events.AIProgress{
			JobID: "job-1", UserID: userID, Service: "forensic", Stage: events.StageCompleted, Progress: 100,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{realtime.EventAICompleted}, hub.events(realtime.UserRoom(userID)))
		notifications.AssertExpectations(t)
	})

	t.Run("unknown stage is permanent", func(t *testing.T) {
		svc := NewAIService(new(MockAnalyzer), new(MockNotificationService), newRecordingEmitter(), zerolog.Nop())

		err := svc.HandleProgress(context.Background(), events.AIProgress{UserID: userID, Stage: "paused"})

		var permanent *events.PermanentError
		assert.ErrorAs(t, err, &permanent)
	})
}
