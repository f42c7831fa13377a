package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"complaintdesk/backend/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	base := apperr.Conflict("decision.final_exists", "final decision already sent")
	wrapped := fmt.Errorf("send decision: %w", base)

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(wrapped))
	assert.Equal(t, "decision.final_exists", apperr.CodeOf(wrapped))
	assert.True(t, apperr.IsKind(wrapped, apperr.KindConflict))
}

func TestKindOf_ForeignErrorIsInternal(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
	assert.False(t, apperr.IsKind(nil, apperr.KindInternal))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := apperr.Wrap(cause, "failed to update complaint")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "deadlock detected")
	assert.Equal(t, apperr.KindInternal, err.Kind)
}

func TestIs_MatchesKindAndCode(t *testing.T) {
	a := apperr.Validation("complaint.title_required", "title is required")
	b := apperr.Validation("complaint.title_required", "other text")
	c := apperr.Validation("complaint.description_required", "description is required")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindUnauthorized, http.StatusUnauthorized},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindConflict, http.StatusConflict},
		{apperr.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}
