package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorayamlj/FocusTache/domain"
)

func TestParseTime(t *testing.T) {
	got, err := ParseTime(" 2025-03-10T14:00:00+02:00 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))

	got, err = ParseTime("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseTime("next friday")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestEnvelopes(t *testing.T) {
	ok := NewSuccess(Collection("tasks", []string{}), ListMeta{Count: 0})
	assert.JSONEq(t, `{"status":"success","data":{"tasks":[]},"meta":{"count":0}}`, ok.String())

	failed := NewError("INVALID", ErrorBody{
		Message: "task validation failed",
		Details: []domain.Violation{{Field: "title", Message: "title is required"}},
	}, nil)
	assert.JSONEq(t, `{"status":"error","code":"INVALID","error":{"message":"task validation failed",
		"details":[{"field":"title","message":"title is required"}]}}`, failed.String())
}
