package activity

import (
	"time"

	"itrust/pkg/domain"
)

// Direction says which side of a vouch an entry records.
type Direction string

const (
	DirectionGave     Direction = "gave"
	DirectionReceived Direction = "received"
)

// Entry is one account-scoped line in the append-only activity log. Two
// entries exist per committed vouch, one per participant. The counterparty
// name is denormalized at commit time so the feed renders without joins.
type Entry struct {
	ID               domain.EventID     `json:"id"`
	AccountID        domain.AccountID   `json:"accountId"`
	Direction        Direction          `json:"direction"`
	CounterpartyID   domain.AccountID   `json:"counterpartyId"`
	CounterpartyName string             `json:"counterpartyName"`
	EventID          domain.EventID     `json:"eventId"`
	Amount           domain.TrustAmount `json:"amount"`
	CreatedAt        time.Time          `json:"createdAt"`
}
