package model

// Vote records that a user liked a movie within a session.
// At most one vote exists per (session, user, movie) triple.
type Vote struct {
	SessionID SessionID
	UserID    UserID
	MovieID   MovieID
}
