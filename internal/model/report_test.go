package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "swachhsetu/internal/errors"
)

func TestReport_Transition(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		from         ReportStatus
		to           ReportStatus
		wantChanged  bool
		wantErr      bool
		wantResolved bool
	}{
		{"pending to in-progress", ReportStatusPending, ReportStatusInProgress, true, false, false},
		{"pending to resolved", ReportStatusPending, ReportStatusResolved, true, false, true},
		{"pending to rejected", ReportStatusPending, ReportStatusRejected, true, false, false},
		{"in-progress to resolved", ReportStatusInProgress, ReportStatusResolved, true, false, true},
		{"in-progress to rejected", ReportStatusInProgress, ReportStatusRejected, false, true, false},
		{"in-progress back to pending", ReportStatusInProgress, ReportStatusPending, false, true, false},
		{"resolved is terminal", ReportStatusResolved, ReportStatusInProgress, false, true, false},
		{"rejected is terminal", ReportStatusRejected, ReportStatusPending, false, true, false},
		{"same status is a no-op", ReportStatusPending, ReportStatusPending, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &Report{Status: tt.from}
			changed, err := report.Transition(tt.to, now)

			assert.Equal(t, tt.wantChanged, changed)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
				assert.Equal(t, tt.from, report.Status)
			} else {
				require.NoError(t, err)
			}
			if tt.wantResolved {
				require.NotNil(t, report.ResolvedAt)
				assert.Equal(t, now, *report.ResolvedAt)
			} else {
				assert.Nil(t, report.ResolvedAt)
			}
		})
	}
}

func TestReport_TransitionKeepsResolvedAtOnNoop(t *testing.T) {
	resolvedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	report := &Report{Status: ReportStatusResolved, ResolvedAt: &resolvedAt}

	changed, err := report.Transition(ReportStatusResolved, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, resolvedAt, *report.ResolvedAt)
}

func TestLocation_MarshalJSON(t *testing.T) {
	loc := Location{Longitude: 77.21, Latitude: 28.61, Address: "Connaught Place"}
	data, err := loc.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"coordinates":[77.21,28.61],"address":"Connaught Place"}`, string(data))
}

func TestEnums(t *testing.T) {
	assert.True(t, CategoryBeach.Valid())
	assert.False(t, Category("volcano").Valid())
	assert.True(t, SeverityCritical.Valid())
	assert.False(t, Severity("urgent").Valid())
	assert.True(t, RoleModerator.IsStaff())
	assert.False(t, RoleUser.IsStaff())
}
