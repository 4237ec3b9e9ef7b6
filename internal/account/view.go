package account

import "itrust/pkg/domain"

// View is the public account projection. The leaderboard and the directory
// serve exactly this shape so clients render both from one component.
type View struct {
	ID           string             `json:"id"`
	DisplayName  string             `json:"displayName"`
	AvatarRef    string             `json:"avatarRef,omitempty"`
	Reputation   int64              `json:"reputation"`
	TrustBalance domain.TrustAmount `json:"trustBalance"`
	JoinOrder    int64              `json:"joinOrder"`
}

// NewView projects an account for transport.
func NewView(a *Account) View {
	return View{
		ID:           a.ID.String(),
		DisplayName:  a.DisplayName,
		AvatarRef:    a.AvatarRef,
		Reputation:   a.Reputation,
		TrustBalance: a.TrustBalance,
		JoinOrder:    a.JoinOrder,
	}
}
