package gamification

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/utils"
)

const defaultCodeAttempts = 8

// Directory creates and joins groups over an in-memory snapshot of every
// group. It never writes anywhere: each operation returns the new group and
// the new user together and the caller must persist both or neither.
type Directory struct {
	newCode      func() (string, error)
	newID        func() string
	codeAttempts int
}

// DirectoryOption customizes a Directory.
type DirectoryOption func(*Directory)

// WithCodeGenerator replaces the invite code source.
func WithCodeGenerator(gen func() (string, error)) DirectoryOption {
	return func(d *Directory) {
		d.newCode = gen
	}
}

// WithIDGenerator replaces the group identifier source.
func WithIDGenerator(gen func() string) DirectoryOption {
	return func(d *Directory) {
		d.newID = gen
	}
}

// WithCodeAttempts bounds how many codes are tried before giving up.
func WithCodeAttempts(n int) DirectoryOption {
	return func(d *Directory) {
		if n > 0 {
			d.codeAttempts = n
		}
	}
}

// NewDirectory creates a Directory using random invite codes and uuids.
func NewDirectory(opts ...DirectoryOption) *Directory {
	d := &Directory{
		newCode:      utils.GenerateInviteCode,
		newID:        uuid.NewString,
		codeAttempts: defaultCodeAttempts,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MemberIdentifier is the roster identifier of user: the email, or the
// display name when there is none.
func MemberIdentifier(user models.User) string {
	if user.Email != "" {
		return user.Email
	}
	return user.Name
}

// CreateGroup creates a group named name with creator as its only member.
func (d *Directory) CreateGroup(groups []models.Group, name string, creator models.User, now time.Time) (models.Group, models.User, error) {
	if creator.IsGuest {
		return models.Group{}, models.User{}, ErrNotPermitted
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.Group{}, models.User{}, ErrEmptyName
	}

	key := models.GroupNameKey(trimmed)
	for _, g := range groups {
		if models.GroupNameKey(g.Name) == key {
			return models.Group{}, models.User{}, ErrDuplicateName
		}
	}

	code, err := d.unusedCode(groups)
	if err != nil {
		return models.Group{}, models.User{}, err
	}

	id := d.newID()
	group := models.Group{
		ID:         id,
		Name:       trimmed,
		NameKey:    key,
		InviteCode: code,
		CreatedAt:  now,
		Members: []models.GroupMember{{
			GroupID:  id,
			UserID:   MemberIdentifier(creator),
			Position: 0,
			Points:   0,
			Streak:   creator.Streak,
			JoinedAt: now,
		}},
	}

	updated := creator.Clone()
	updated.GroupIDs = append(updated.GroupIDs, id)

	return group, updated, nil
}

// JoinGroup adds user to the group whose invite code matches code,
// ignoring case and surrounding whitespace.
func (d *Directory) JoinGroup(groups []models.Group, code string, user models.User, now time.Time) (models.Group, models.User, error) {
	if user.IsGuest {
		return models.Group{}, models.User{}, ErrNotPermitted
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if utf8.RuneCountInString(normalized) != utils.InviteCodeLength {
		return models.Group{}, models.User{}, ErrInvalidCode
	}

	idx := -1
	for i, g := range groups {
		if strings.ToUpper(g.InviteCode) == normalized {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Group{}, models.User{}, ErrInvalidCode
	}

	target := groups[idx]
	memberID := MemberIdentifier(user)
	if target.HasMember(memberID) {
		return models.Group{}, models.User{}, ErrAlreadyMember
	}

	group := target
	group.Members = append(append([]models.GroupMember{}, target.Members...), models.GroupMember{
		GroupID:  target.ID,
		UserID:   memberID,
		Position: nextPosition(target.Members),
		Points:   0,
		Streak:   user.Streak,
		JoinedAt: now,
	})

	updated := user.Clone()
	if !updated.InGroup(target.ID) {
		updated.GroupIDs = append(updated.GroupIDs, target.ID)
	}

	return group, updated, nil
}

func (d *Directory) unusedCode(groups []models.Group) (string, error) {
	inUse := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		inUse[strings.ToUpper(g.InviteCode)] = struct{}{}
	}

	for i := 0; i < d.codeAttempts; i++ {
		code, err := d.newCode()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		if _, taken := inUse[strings.ToUpper(code)]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func nextPosition(members []models.GroupMember) int {
	next := 0
	for _, m := range members {
		if m.Position >= next {
			next = m.Position + 1
		}
	}
	return next
}

// SyncMember copies the user's current streak into their roster snapshot.
// It reports false when the user is not a member or nothing changed.
func SyncMember(group models.Group, user models.User) (models.Group, bool) {
	memberID := MemberIdentifier(user)
	for i, m := range group.Members {
		if m.UserID != memberID {
			continue
		}
		if m.Streak == user.Streak {
			return group, false
		}
		synced := group
		synced.Members = append([]models.GroupMember{}, group.Members...)
		synced.Members[i].Streak = user.Streak
		return synced, true
	}
	return group, false
}

// Standing is one leaderboard row.
type Standing struct {
	Rank   int                `json:"rank"`
	Member models.GroupMember `json:"member"`
}

// Leaderboard ranks members by points, then streak, keeping join order for
// ties. Tied members share a rank and the next rank is skipped.
func Leaderboard(group models.Group) []Standing {
	members := append([]models.GroupMember{}, group.Members...)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Position < members[j].Position
	})
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Points != members[j].Points {
			return members[i].Points > members[j].Points
		}
		return members[i].Streak > members[j].Streak
	})

	standings := make([]Standing, len(members))
	for i, m := range members {
		rank := i + 1
		if i > 0 {
			prev := standings[i-1]
			if prev.Member.Points == m.Points && prev.Member.Streak == m.Streak {
				rank = prev.Rank
			}
		}
		standings[i] = Standing{Rank: rank, Member: m}
	}
	return standings
}
