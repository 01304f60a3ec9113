package dto

import (
	"time"

	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/models"
)

// GroupMemberDTO represents a roster entry in API responses
type GroupMemberDTO struct {
	UserID   string    `json:"user_id"`
	Points   int       `json:"points"`
	Streak   int       `json:"streak"`
	JoinedAt time.Time `json:"joined_at"`
}

// GroupDTO represents a group in API responses
type GroupDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}

// GroupDetailDTO is a group with its ordered roster
type GroupDetailDTO struct {
	GroupDTO
	Members []GroupMemberDTO `json:"members"`
}

// GroupMutationResponse is a created or joined group with the caller's
// updated profile
type GroupMutationResponse struct {
	Group GroupDetailDTO `json:"group"`
	User  UserDTO        `json:"user"`
}

// StandingDTO is one leaderboard row
type StandingDTO struct {
	Rank int `json:"rank"`
	GroupMemberDTO
}

// LeaderboardResponse ranks a group's members
type LeaderboardResponse struct {
	Group     GroupDTO      `json:"group"`
	Standings []StandingDTO `json:"standings"`
}

// ToGroupMemberDTO converts a GroupMember model
func ToGroupMemberDTO(member models.GroupMember) GroupMemberDTO {
	return GroupMemberDTO{
		UserID:   member.UserID,
		Points:   member.Points,
		Streak:   member.Streak,
		JoinedAt: member.JoinedAt,
	}
}

// ToGroupDTO converts a Group model
func ToGroupDTO(group models.Group) GroupDTO {
	return GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		InviteCode:  group.InviteCode,
		CreatedAt:   group.CreatedAt,
		MemberCount: len(group.Members),
	}
}

// ToGroupDTOs converts groups, never returning nil
func ToGroupDTOs(groups []models.Group) []GroupDTO {
	items := make([]GroupDTO, len(groups))
	for i, g := range groups {
		items[i] = ToGroupDTO(g)
	}
	return items
}

// ToGroupDetailDTO converts a group with its roster
func ToGroupDetailDTO(group models.Group) GroupDetailDTO {
	members := make([]GroupMemberDTO, len(group.Members))
	for i, m := range group.Members {
		members[i] = ToGroupMemberDTO(m)
	}
	return GroupDetailDTO{
		GroupDTO: ToGroupDTO(group),
		Members:  members,
	}
}

// ToLeaderboardResponse converts a ranked roster
func ToLeaderboardResponse(group models.Group, standings []gamification.Standing) LeaderboardResponse {
	rows := make([]StandingDTO, len(standings))
	for i, s := range standings {
		rows[i] = StandingDTO{
			Rank:           s.Rank,
			GroupMemberDTO: ToGroupMemberDTO(s.Member),
		}
	}
	return LeaderboardResponse{
		Group:     ToGroupDTO(group),
		Standings: rows,
	}
}
