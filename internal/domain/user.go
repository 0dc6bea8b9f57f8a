package domain

// UserEconomy holds a user's currency balances. Balances are global
// across guilds and never go negative.
type UserEconomy struct {
	KeyBalance   int `json:"key_balance"`
	PointBalance int `json:"point_balance"`
}

// DefaultKeyBalance is granted the first time any command touches a
// previously unseen user ID.
const DefaultKeyBalance = 3
