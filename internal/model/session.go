package model

import (
	"math/rand"
	"strings"
	"time"
)

type SessionID string

// SessionIDLen is the length of the public session identifier.
const SessionIDLen = 8

const sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewSessionID builds a random alphanumeric session identifier.
// Uniqueness is enforced by the storage layer; callers retry on conflict.
func NewSessionID() SessionID {
	var builder strings.Builder
	builder.Grow(SessionIDLen)
	for range SessionIDLen {
		builder.WriteByte(sessionIDAlphabet[rand.Intn(len(sessionIDAlphabet))])
	}
	return SessionID(builder.String())
}

type SessionStatus string

const (
	StatusDraft   SessionStatus = "draft"
	StatusWaiting SessionStatus = "waiting"
	StatusVoting  SessionStatus = "voting"
	StatusClosed  SessionStatus = "closed"
)

var statusOrder = map[SessionStatus]int{
	StatusDraft:   0,
	StatusWaiting: 1,
	StatusVoting:  2,
	StatusClosed:  3,
}

// CanTransition reports whether a session may move from its current status
// to the target one. Transitions are one-directional; "closed" is terminal
// and reachable from any earlier status (early departure, roulette).
func (s SessionStatus) CanTransition(to SessionStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	target, ok := statusOrder[to]
	if !ok {
		return false
	}
	if to == StatusClosed {
		return true
	}
	return target == from+1
}

type Session struct {
	ID        SessionID
	Status    SessionStatus
	CreatedAt time.Time
	CoverLink string

	Members []User
	Movies  []MovieID
	Matches []MovieID
}

func (s *Session) IsMember(userID UserID) bool {
	for _, m := range s.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

func (s *Session) IsCandidate(movieID MovieID) bool {
	for _, id := range s.Movies {
		if id == movieID {
			return true
		}
	}
	return false
}

func (s *Session) IsMatched(movieID MovieID) bool {
	for _, id := range s.Matches {
		if id == movieID {
			return true
		}
	}
	return false
}
