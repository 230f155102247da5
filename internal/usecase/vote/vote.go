package usecase_vote

import (
	"context"
	"errors"

	"github.com/moviematch/core/internal/model"
	usecase_session "github.com/moviematch/core/internal/usecase/session"
)

var (
	// Session lookups go through the session usecase, so its sentinel is
	// shared to keep errors.Is working across the boundary.
	ErrSessionNotFound = usecase_session.ErrSessionNotFound

	ErrWrongStatus     = errors.New("session is not in voting status")
	ErrNotAMember      = errors.New("user is not a session member")
	ErrNotACandidate   = errors.New("movie is not a session candidate")
	ErrAlreadyMatched  = errors.New("movie is already matched")
	ErrDuplicateVote   = errors.New("vote already exists")
	ErrInternal        = errors.New("internal error")
)

//go:generate mockery --name=VoteRepository --output=./mocks/vote --filename=vote_repository.go
type VoteRepository interface {
	// InsertAndTally inserts the vote and, within the same transaction
	// holding the session row lock, compares the distinct-voter count for
	// the movie against the current member count. On equality the movie
	// is appended to the matched set. matched is true only for the single
	// insert that crossed the quorum, so a match is reported exactly once
	// even under concurrent voting.
	InsertAndTally(ctx context.Context, vote model.Vote) (matched bool, err error)

	// Delete reports whether a vote row was actually removed.
	Delete(ctx context.Context, vote model.Vote) (bool, error)
}

//go:generate mockery --name=SessionReader --output=./mocks/vote --filename=session_reader.go
type SessionReader interface {
	ByID(ctx context.Context, id model.SessionID) (model.Session, error)
}

//go:generate mockery --name=Broadcaster --output=./mocks/vote --filename=broadcaster.go
type Broadcaster interface {
	Publish(id model.SessionID, topic string, payload any)
}

type Usecase struct {
	votes       VoteRepository
	sessions    SessionReader
	broadcaster Broadcaster
}

func New(
	votes VoteRepository,
	sessions SessionReader,
	broadcaster Broadcaster,
) *Usecase {
	return &Usecase{
		votes:       votes,
		sessions:    sessions,
		broadcaster: broadcaster,
	}
}

// Like records a vote. All preconditions are checked before any write, so
// a rejected vote leaves no state behind. When the vote completes the
// quorum the movie id is pushed on the "matches" topic.
func (u *Usecase) Like(ctx context.Context, sessionID model.SessionID, userID model.UserID, movieID model.MovieID) (model.Vote, error) {
	session, err := u.sessions.ByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return model.Vote{}, ErrSessionNotFound
		}
		return model.Vote{}, errors.Join(ErrInternal, err)
	}

	if session.Status != model.StatusVoting {
		return model.Vote{}, ErrWrongStatus
	}
	if !session.IsMember(userID) {
		return model.Vote{}, ErrNotAMember
	}
	if !session.IsCandidate(movieID) {
		return model.Vote{}, ErrNotACandidate
	}
	if session.IsMatched(movieID) {
		return model.Vote{}, ErrAlreadyMatched
	}

	vote := model.Vote{SessionID: sessionID, UserID: userID, MovieID: movieID}
	matched, err := u.votes.InsertAndTally(ctx, vote)
	if err != nil {
		if errors.Is(err, ErrDuplicateVote) {
			// Benign: the identical triple is already recorded.
			return vote, ErrDuplicateVote
		}
		if errors.Is(err, ErrWrongStatus) {
			// Voting ended between the read above and the locked insert.
			return model.Vote{}, ErrWrongStatus
		}
		return model.Vote{}, errors.Join(ErrInternal, err)
	}

	if matched {
		u.broadcaster.Publish(sessionID, model.TopicMatches, movieID)
	}
	return vote, nil
}

// Unlike removes a vote if present. Absence of a prior vote is an
// expected caller state, reported as removed=false rather than an error.
func (u *Usecase) Unlike(ctx context.Context, sessionID model.SessionID, userID model.UserID, movieID model.MovieID) (bool, error) {
	removed, err := u.votes.Delete(ctx, model.Vote{
		SessionID: sessionID,
		UserID:    userID,
		MovieID:   movieID,
	})
	if err != nil {
		return false, errors.Join(ErrInternal, err)
	}
	return removed, nil
}
