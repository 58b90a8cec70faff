package personalization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visahub/backend/domain"
)

func testProfile() *domain.Profile {
	return &domain.Profile{ID: "user-1", VisaType: domain.VisaF1}
}

func TestDecodeResponse(t *testing.T) {
	body := []byte(`{"tasks": [
		{"title": "File I-765", "description": "OPT application", "category": "immigration", "phase": "OPT", "priority": "high", "due_date": "2026-01-15"}
	]}`)

	tasks, err := decodeResponse(body, testProfile())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, "user-1", task.UserID)
	assert.Equal(t, "File I-765", task.Title)
	assert.Equal(t, domain.CategoryImmigration, task.Category)
	assert.Equal(t, domain.PhaseOPT, task.Phase)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, domain.VisaF1, task.VisaType)
	assert.True(t, task.Generated)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-01-15", task.DueDate.Format("2006-01-02"))
}

func TestDecodeResponse_EmptyTasksArray(t *testing.T) {
	tasks, err := decodeResponse([]byte(`{"tasks": []}`), testProfile())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDecodeResponse_MalformedShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `garbage`},
		{"array at top level", `[{"title": "x"}]`},
		{"missing tasks key", `{"items": []}`},
		{"tasks not an array", `{"tasks": {"title": "x"}}`},
		{"tasks is a string", `{"tasks": "none"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeResponse([]byte(tc.body), testProfile())
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformed))
		})
	}
}

func TestDecodeResponse_NormalizesUnknownEnums(t *testing.T) {
	body := []byte(`{"tasks": [
		{"title": "Odd task", "category": "astrology", "phase": "F1", "priority": "urgent", "due_date": "not-a-date"}
	]}`)

	tasks, err := decodeResponse(body, testProfile())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, domain.CategoryOther, tasks[0].Category)
	assert.Equal(t, domain.PriorityMedium, tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)
}

func TestSnapshot(t *testing.T) {
	grad := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	profile := &domain.Profile{
		ID:             "user-2",
		OPTActive:      true,
		GraduationDate: &grad,
	}

	snap := Snapshot(profile)

	assert.Equal(t, "user-2", snap.UserID)
	assert.Equal(t, domain.VisaF1, snap.VisaType, "visa type defaults to F1")
	assert.True(t, snap.OPTActive)
	require.NotNil(t, snap.GraduationDate)
	assert.Equal(t, "2026-05-20", *snap.GraduationDate)
	assert.Nil(t, snap.EntryDate)
	assert.Nil(t, snap.TransferDate)
}
