package model

import "github.com/sameicp/assignment-monitor/internal/types"

const (
	ParticipantCollection    = "participants"
	BalanceCollection        = "balances"
	SupervisorPoolCollection = "supervisor_pool"
)

type ParticipantDocument struct {
	Id          string     `bson:"_id"` // Primary key
	Name        string     `bson:"name"`
	AreaOfStudy string     `bson:"area_of_study"`
	Role        types.Role `bson:"role"`
	HasStaked   bool       `bson:"has_staked"`
	CreatedAt   int64      `bson:"created_at"`
}

func NewParticipantDocument(id, name, areaOfStudy string, role types.Role, createdAt int64) *ParticipantDocument {
	return &ParticipantDocument{
		Id:          id,
		Name:        name,
		AreaOfStudy: areaOfStudy,
		Role:        role,
		HasStaked:   false,
		CreatedAt:   createdAt,
	}
}

// BalanceDocument is the stake held for a participant. Amount is never negative.
type BalanceDocument struct {
	ParticipantId string `bson:"_id"`
	Amount        uint64 `bson:"amount"`
}

// SupervisorPoolDocument is a staked supervisor eligible for matching. The pool
// is keyed by participant id so re-staking never duplicates an entry.
type SupervisorPoolDocument struct {
	ParticipantId string `bson:"_id"`
	Name          string `bson:"name"`
	AreaOfStudy   string `bson:"area_of_study"`
	JoinedAt      int64  `bson:"joined_at"`
}
