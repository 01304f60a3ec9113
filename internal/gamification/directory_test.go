package gamification

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/study-tracker-api/internal/models"
)

var fixedNow = time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC)

func sequenceCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(codes) {
			return "", errors.New("no more codes")
		}
		c := codes[i]
		i++
		return c, nil
	}
}

func sequenceIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("group-%d", n)
	}
}

func registered(email, name string, streak int) models.User {
	return models.User{Email: email, Name: name, Streak: streak, Badges: []string{}, GroupIDs: []string{}}
}

func TestCreateGroup_Success(t *testing.T) {
	dir := NewDirectory(WithCodeGenerator(sequenceCodes("ABC123")), WithIDGenerator(sequenceIDs()))
	creator := registered("a@example.com", "Ana", 4)

	group, user, err := dir.CreateGroup(nil, "  Mi clase ", creator, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, "group-1", group.ID)
	assert.Equal(t, "Mi clase", group.Name)
	assert.Equal(t, "mi clase", group.NameKey)
	assert.Equal(t, "ABC123", group.InviteCode)
	assert.Equal(t, fixedNow, group.CreatedAt)
	require.Len(t, group.Members, 1)
	assert.Equal(t, "a@example.com", group.Members[0].UserID)
	assert.Equal(t, 0, group.Members[0].Points)
	assert.Equal(t, 4, group.Members[0].Streak)
	assert.Equal(t, []string{"group-1"}, user.GroupIDs)
	assert.Empty(t, creator.GroupIDs)
}

func TestCreateGroup_DuplicateNameIgnoresCase(t *testing.T) {
	dir := NewDirectory(WithCodeGenerator(sequenceCodes("ABC123", "XYZ789")), WithIDGenerator(sequenceIDs()))

	group, _, err := dir.CreateGroup(nil, "Mi clase", registered("a@example.com", "Ana", 0), fixedNow)
	require.NoError(t, err)

	_, _, err = dir.CreateGroup([]models.Group{group}, "mi clase", registered("b@example.com", "Beto", 0), fixedNow)
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, KindDuplicateName, KindOf(err))
}

func TestCreateGroup_EmptyName(t *testing.T) {
	dir := NewDirectory()
	for _, name := range []string{"", "   ", "\t\n"} {
		_, _, err := dir.CreateGroup(nil, name, registered("a@example.com", "Ana", 0), fixedNow)
		require.ErrorIs(t, err, ErrEmptyName)
	}
}

func TestCreateGroup_GuestNotPermitted(t *testing.T) {
	dir := NewDirectory()
	guest := models.User{Name: "Invitado", IsGuest: true}

	_, _, err := dir.CreateGroup(nil, "Valid name", guest, fixedNow)
	require.ErrorIs(t, err, ErrNotPermitted)

	// checked before name validation
	_, _, err = dir.CreateGroup(nil, "", guest, fixedNow)
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestCreateGroup_RegeneratesCollidingCode(t *testing.T) {
	existing := models.Group{ID: "g-0", Name: "Otro", InviteCode: "ABC123"}
	dir := NewDirectory(WithCodeGenerator(sequenceCodes("abc123", "ABC123", "QWE456")))

	group, _, err := dir.CreateGroup([]models.Group{existing}, "Nuevo", registered("a@example.com", "Ana", 0), fixedNow)

	require.NoError(t, err)
	assert.Equal(t, "QWE456", group.InviteCode)
}

func TestCreateGroup_CodeSpaceExhausted(t *testing.T) {
	existing := models.Group{ID: "g-0", Name: "Otro", InviteCode: "ABC123"}
	dir := NewDirectory(WithCodeGenerator(sequenceCodes("ABC123", "ABC123")), WithCodeAttempts(2))

	_, _, err := dir.CreateGroup([]models.Group{existing}, "Nuevo", registered("a@example.com", "Ana", 0), fixedNow)

	require.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, ErrorKind(""), KindOf(err))
}

func TestJoinGroup_SuccessThenAlreadyMember(t *testing.T) {
	dir := NewDirectory(WithCodeGenerator(sequenceCodes("ABC123")), WithIDGenerator(sequenceIDs()))
	group, _, err := dir.CreateGroup(nil, "Mi clase", registered("a@example.com", "Ana", 0), fixedNow)
	require.NoError(t, err)

	userB := registered("b@example.com", "Beto", 6)
	joined, updatedB, err := dir.JoinGroup([]models.Group{group}, " abc123 ", userB, fixedNow)

	require.NoError(t, err)
	require.Len(t, joined.Members, 2)
	assert.Equal(t, "a@example.com", joined.Members[0].UserID)
	assert.Equal(t, "b@example.com", joined.Members[1].UserID)
	assert.Equal(t, 6, joined.Members[1].Streak)
	assert.Equal(t, 0, joined.Members[1].Points)
	assert.Equal(t, 1, joined.Members[1].Position)
	assert.Equal(t, []string{group.ID}, updatedB.GroupIDs)
	assert.Len(t, group.Members, 1, "input snapshot is not mutated")

	_, _, err = dir.JoinGroup([]models.Group{joined}, "ABC123", updatedB, fixedNow)
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestJoinGroup_InvalidCode(t *testing.T) {
	dir := NewDirectory()
	groups := []models.Group{{ID: "g-1", Name: "Mi clase", InviteCode: "ABC123"}}
	user := registered("b@example.com", "Beto", 0)

	for _, code := range []string{"", "ABC12", "ABC1234", "ZZZ999"} {
		_, _, err := dir.JoinGroup(groups, code, user, fixedNow)
		require.ErrorIs(t, err, ErrInvalidCode, code)
	}
}

func TestJoinGroup_GuestNotPermitted(t *testing.T) {
	dir := NewDirectory()
	groups := []models.Group{{ID: "g-1", Name: "Mi clase", InviteCode: "ABC123"}}
	guest := models.User{Name: "Invitado", IsGuest: true}

	_, _, err := dir.JoinGroup(groups, "ABC123", guest, fixedNow)
	require.ErrorIs(t, err, ErrNotPermitted)

	_, _, err = dir.JoinGroup(groups, "bad", guest, fixedNow)
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestMemberIdentifier(t *testing.T) {
	assert.Equal(t, "a@example.com", MemberIdentifier(models.User{Email: "a@example.com", Name: "Ana"}))
	assert.Equal(t, "Ana", MemberIdentifier(models.User{Name: "Ana"}))
}

func TestSyncMember(t *testing.T) {
	group := models.Group{ID: "g-1", Members: []models.GroupMember{
		{UserID: "a@example.com", Streak: 1},
		{UserID: "b@example.com", Streak: 2, Position: 1},
	}}

	synced, changed := SyncMember(group, registered("b@example.com", "Beto", 5))
	require.True(t, changed)
	assert.Equal(t, 5, synced.Members[1].Streak)
	assert.Equal(t, 2, group.Members[1].Streak)

	_, changed = SyncMember(synced, registered("b@example.com", "Beto", 5))
	assert.False(t, changed)

	_, changed = SyncMember(group, registered("c@example.com", "Caro", 5))
	assert.False(t, changed)
}

func TestLeaderboard_OrdersAndSharesRanks(t *testing.T) {
	group := models.Group{Members: []models.GroupMember{
		{UserID: "a", Position: 0, Points: 10, Streak: 1},
		{UserID: "b", Position: 1, Points: 30, Streak: 0},
		{UserID: "c", Position: 2, Points: 10, Streak: 4},
		{UserID: "d", Position: 3, Points: 10, Streak: 1},
	}}

	board := Leaderboard(group)

	require.Len(t, board, 4)
	ids := []string{board[0].Member.UserID, board[1].Member.UserID, board[2].Member.UserID, board[3].Member.UserID}
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
	assert.Equal(t, []int{1, 2, 3, 3}, []int{board[0].Rank, board[1].Rank, board[2].Rank, board[3].Rank})
}
