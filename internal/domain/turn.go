package domain

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Turn is a single rendered chat bubble. Turns only live for the duration
// of one response page and are never stored.
type Turn struct {
	Text string
	Role Role
}
