package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/study-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/study-tracker-api/internal/errors"
)

func createGroup(t *testing.T, c *client, name string) dto.GroupMutationResponse {
	t.Helper()
	w := c.do(http.MethodPost, "/api/groups", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.GroupMutationResponse](t, w)
}

func TestGroupHandler_CreateAndJoin(t *testing.T) {
	r := setupRouter(t)
	ana := newClient(t, r)
	ana.signup("ana@example.com", "Ana")
	luis := newClient(t, r)
	luis.signup("luis@example.com", "Luis")

	created := createGroup(t, ana, "Mi clase")
	assert.Equal(t, "Mi clase", created.Group.Name)
	assert.Len(t, created.Group.InviteCode, 6)
	assert.Equal(t, []string{created.Group.ID}, created.User.GroupIDs)
	require.Len(t, created.Group.Members, 1)

	w := luis.do(http.MethodPost, "/api/groups/join", map[string]string{"invite_code": created.Group.InviteCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	joined := decode[dto.GroupMutationResponse](t, w)
	assert.Equal(t, 2, joined.Group.MemberCount)
	assert.Equal(t, []string{created.Group.ID}, joined.User.GroupIDs)

	w = luis.do(http.MethodPost, "/api/groups/join", map[string]string{"invite_code": created.Group.InviteCode})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_MEMBER", decode[apierrors.APIError](t, w).Kind)

	w = luis.do(http.MethodGet, "/api/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Groups []dto.GroupDTO `json:"groups"`
	}](t, w)
	require.Len(t, list.Groups, 1)
	assert.Equal(t, 2, list.Groups[0].MemberCount)
}

func TestGroupHandler_Errors(t *testing.T) {
	r := setupRouter(t)
	ana := newClient(t, r)
	ana.signup("ana@example.com", "Ana")
	luis := newClient(t, r)
	luis.signup("luis@example.com", "Luis")

	createGroup(t, ana, "Mi clase")

	tests := []struct {
		name    string
		path    string
		payload map[string]string
		status  int
		kind    string
	}{
		{"duplicate name", "/api/groups", map[string]string{"name": "MI CLASE"}, http.StatusConflict, "DUPLICATE_NAME"},
		{"empty name", "/api/groups", map[string]string{"name": "   "}, http.StatusBadRequest, "EMPTY_NAME"},
		{"unknown code", "/api/groups/join", map[string]string{"invite_code": "ZZZZZZ"}, http.StatusNotFound, "INVALID_CODE"},
		{"malformed code", "/api/groups/join", map[string]string{"invite_code": "abc"}, http.StatusNotFound, "INVALID_CODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := luis.do(http.MethodPost, tt.path, tt.payload)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, decode[apierrors.APIError](t, w).Kind)
		})
	}
}

func TestGroupHandler_GuestForbidden(t *testing.T) {
	r := setupRouter(t)
	ana := newClient(t, r)
	ana.signup("ana@example.com", "Ana")
	created := createGroup(t, ana, "Mi clase")

	guest := newClient(t, r)
	w := guest.do(http.MethodPost, "/api/auth/guest", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = guest.do(http.MethodPost, "/api/groups", map[string]string{"name": "Invitados"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_PERMITTED", decode[apierrors.APIError](t, w).Kind)

	w = guest.do(http.MethodPost, "/api/groups/join", map[string]string{"invite_code": created.Group.InviteCode})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGroupHandler_GetAndLeaderboard(t *testing.T) {
	r := setupRouter(t)
	ana := newClient(t, r)
	ana.signup("ana@example.com", "Ana")
	luis := newClient(t, r)
	luis.signup("luis@example.com", "Luis")
	outsider := newClient(t, r)
	outsider.signup("eva@example.com", "Eva")

	created := createGroup(t, ana, "Mi clase")
	w := luis.do(http.MethodPost, "/api/groups/join", map[string]string{"invite_code": created.Group.InviteCode})
	require.Equal(t, http.StatusOK, w.Code)

	// a completion today puts Luis ahead through the synced member streak
	w = luis.do(http.MethodPost, "/api/tasks", map[string]string{
		"subject":  "Historia",
		"type":     "Lectura",
		"due_date": "2026-01-11",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[dto.TaskMutationResponse](t, w).Task
	w = luis.do(http.MethodPost, "/api/tasks/"+task.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ana.do(http.MethodGet, "/api/groups/"+created.Group.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	detail := decode[dto.GroupDetailDTO](t, w)
	require.Len(t, detail.Members, 2)
	assert.Equal(t, "luis@example.com", detail.Members[1].UserID)
	assert.Equal(t, 1, detail.Members[1].Streak)

	w = ana.do(http.MethodGet, "/api/groups/"+created.Group.ID+"/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	board := decode[dto.LeaderboardResponse](t, w)
	require.Len(t, board.Standings, 2)
	assert.Equal(t, 1, board.Standings[0].Rank)
	assert.Equal(t, "luis@example.com", board.Standings[0].UserID)
	assert.Equal(t, 2, board.Standings[1].Rank)

	w = outsider.do(http.MethodGet, "/api/groups/"+created.Group.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ana.do(http.MethodGet, "/api/groups/missing/leaderboard", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
