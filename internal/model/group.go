package model

type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Membership links one user to one group. The pair is the identity; a
// membership has no lifecycle of its own and disappears with either side.
type Membership struct {
	UserID  int64 `json:"user_id"`
	GroupID int64 `json:"group_id"`
}
