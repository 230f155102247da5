package usecase_roulette

import (
	"context"
	"errors"
	"math/rand"

	"github.com/moviematch/core/internal/model"
	usecase_session "github.com/moviematch/core/internal/usecase/session"
)

// MinMatchesForSpin is the strict lower bound on the matched set size
// below which spinning is pointless as a tie-breaker.
const MinMatchesForSpin = 2

var (
	// Matches are read through the session repository, so the session
	// usecase sentinel is shared to keep errors.Is working.
	ErrSessionNotFound = usecase_session.ErrSessionNotFound

	ErrInsufficientMatches = errors.New("not enough matches to spin")
	ErrInternal            = errors.New("internal error")
)

//go:generate mockery --name=MatchRepository --output=./mocks/roulette --filename=match_repository.go
type MatchRepository interface {
	Matches(ctx context.Context, id model.SessionID) ([]model.MovieID, error)
}

//go:generate mockery --name=SessionCloser --output=./mocks/roulette --filename=session_closer.go
type SessionCloser interface {
	Close(ctx context.Context, id model.SessionID) (model.Session, error)
}

//go:generate mockery --name=Broadcaster --output=./mocks/roulette --filename=broadcaster.go
type Broadcaster interface {
	Publish(id model.SessionID, topic string, payload any)
}

type Usecase struct {
	matches     MatchRepository
	closer      SessionCloser
	broadcaster Broadcaster
}

func New(
	matches MatchRepository,
	closer SessionCloser,
	broadcaster Broadcaster,
) *Usecase {
	return &Usecase{
		matches:     matches,
		closer:      closer,
		broadcaster: broadcaster,
	}
}

// Spin picks one matched movie uniformly at random, announces it and
// closes the session. The draw is not reproducible: no seed is kept.
func (u *Usecase) Spin(ctx context.Context, id model.SessionID) (model.MovieID, error) {
	matched, err := u.matches.Matches(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, errors.Join(ErrInternal, err)
	}
	if len(matched) <= MinMatchesForSpin {
		return 0, ErrInsufficientMatches
	}

	winner := matched[rand.Intn(len(matched))]

	u.broadcaster.Publish(id, model.TopicSessionStatus, "roulette")
	u.broadcaster.Publish(id, model.TopicRoulette, winner)

	if _, err := u.closer.Close(ctx, id); err != nil {
		return 0, errors.Join(ErrInternal, err)
	}
	return winner, nil
}
