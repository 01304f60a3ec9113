package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/study-tracker-api/internal/gamification"
)

func TestDirectory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{gamification.ErrNotPermitted, http.StatusForbidden, ErrCodeForbidden},
		{gamification.ErrInvalidCode, http.StatusNotFound, ErrCodeNotFound},
		{gamification.ErrDuplicateName, http.StatusConflict, ErrCodeConflict},
		{gamification.ErrAlreadyMember, http.StatusConflict, ErrCodeConflict},
		{gamification.ErrEmptyName, http.StatusBadRequest, ErrCodeInvalidInput},
		{fmt.Errorf("join: %w", gamification.ErrAlreadyMember), http.StatusConflict, ErrCodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			require.True(t, Directory(c, tt.err))
			assert.Equal(t, tt.status, w.Code)

			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, string(gamification.KindOf(tt.err)), body.Kind)
		})
	}
}

func TestDirectory_OtherErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	assert.False(t, Directory(c, stderrors.New("boom")))
	assert.False(t, Directory(c, gamification.ErrCodeSpaceExhausted))
	assert.Zero(t, w.Body.Len())
}
