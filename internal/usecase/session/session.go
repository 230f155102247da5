package usecase_session

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviematch/core/internal/model"
)

var (
	ErrValidation          = errors.New("invalid input")
	ErrCodeConflict        = errors.New("session id conflict")
	ErrSessionsUnavailable = errors.New("no available session ids")
	ErrSessionNotFound     = errors.New("no such session")
	ErrInvalidTransition   = errors.New("operation not allowed in current status")
	ErrNotAMember          = errors.New("user is not a session member")
	ErrQuorumNotMet        = errors.New("not enough members to start voting")
	ErrCatalogUnavailable  = errors.New("catalog unavailable")
	ErrInternal            = errors.New("internal error")
)

//go:generate mockery --name=SessionRepository --output=./mocks/session --filename=session_repository.go
type SessionRepository interface {
	Create(ctx context.Context, session model.Session) error
	ByID(ctx context.Context, id model.SessionID) (model.Session, error)

	// AddMember admits a user inside a transaction holding the session
	// row lock, so concurrent joins cannot slip past the status check.
	// Re-adding an existing member is a no-op.
	AddMember(ctx context.Context, id model.SessionID, userID model.UserID) error

	// RemoveMember reports whether the user was actually a member.
	RemoveMember(ctx context.Context, id model.SessionID, userID model.UserID) (bool, error)

	Members(ctx context.Context, id model.SessionID) ([]model.User, error)

	// BeginVoting moves a waiting session into voting while holding the
	// session row lock, so the member count it checks cannot shrink
	// between the check and the transition.
	BeginVoting(ctx context.Context, id model.SessionID) error

	// TransitionStatus applies a conditional status update and reports
	// whether the row was in the expected status.
	TransitionStatus(ctx context.Context, id model.SessionID, from, to model.SessionStatus) (bool, error)

	Matches(ctx context.Context, id model.SessionID) ([]model.MovieID, error)
	SetCover(ctx context.Context, id model.SessionID, coverLink string) error
	ClosedByUser(ctx context.Context, userID model.UserID) ([]model.Session, error)
}

//go:generate mockery --name=UserProvider --output=./mocks/session --filename=user_provider.go
type UserProvider interface {
	ByDevice(ctx context.Context, deviceID string) (model.User, error)
}

//go:generate mockery --name=MovieProvider --output=./mocks/session --filename=movie_provider.go
type MovieProvider interface {
	ResolveByFilter(ctx context.Context, filter model.MovieFilter) ([]model.Movie, error)
	ByIDs(ctx context.Context, ids []model.MovieID) ([]model.Movie, error)
}

//go:generate mockery --name=CoverStore --output=./mocks/session --filename=cover_store.go
type CoverStore interface {
	Store(ctx context.Context, id model.SessionID, posterLink string) (string, error)

	// ResolveLink turns a stored cover key into a client-fetchable URL.
	ResolveLink(ctx context.Context, key string) (string, error)
}

//go:generate mockery --name=Broadcaster --output=./mocks/session --filename=broadcaster.go
type Broadcaster interface {
	Publish(id model.SessionID, topic string, payload any)
}

type Usecase struct {
	sessions    SessionRepository
	users       UserProvider
	movies      MovieProvider
	covers      CoverStore
	broadcaster Broadcaster
}

func New(
	sessions SessionRepository,
	users UserProvider,
	movies MovieProvider,
	covers CoverStore,
	broadcaster Broadcaster,
) *Usecase {
	return &Usecase{
		sessions:    sessions,
		users:       users,
		movies:      movies,
		covers:      covers,
		broadcaster: broadcaster,
	}
}

// Create resolves candidate movies from the catalog and persists a new
// session in "waiting" status with the requesting user as sole member.
func (u *Usecase) Create(ctx context.Context, deviceID string, filter model.MovieFilter) (model.Session, error) {
	if deviceID == "" {
		return model.Session{}, fmt.Errorf("%w: device id is required", ErrValidation)
	}
	user, err := u.users.ByDevice(ctx, deviceID)
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: unknown device %q", ErrValidation, deviceID)
	}

	movies, err := u.movies.ResolveByFilter(ctx, filter)
	if err != nil {
		return model.Session{}, errors.Join(ErrCatalogUnavailable, err)
	}
	if len(movies) == 0 {
		return model.Session{}, fmt.Errorf("%w: catalog returned no movies", ErrCatalogUnavailable)
	}

	movieIDs := make([]model.MovieID, len(movies))
	for i, m := range movies {
		movieIDs[i] = m.ID
	}

	return u.createWithRetry(ctx, user, movieIDs)
}

// Assuming that generated ids can conflict.
// Retrying...
func (u *Usecase) createWithRetry(ctx context.Context, owner model.User, movieIDs []model.MovieID) (model.Session, error) {
	var retries = 3
	for retries > 0 {
		session := model.Session{
			ID:      model.NewSessionID(),
			Status:  model.StatusWaiting,
			Members: []model.User{owner},
			Movies:  movieIDs,
		}
		if err := u.sessions.Create(ctx, session); err != nil {
			if errors.Is(err, ErrCodeConflict) {
				retries--
				continue
			}
			return model.Session{}, errors.Join(ErrInternal, err)
		}
		return session, nil
	}
	return model.Session{}, ErrSessionsUnavailable
}

func (u *Usecase) ByID(ctx context.Context, id model.SessionID) (model.Session, error) {
	session, err := u.sessions.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return model.Session{}, ErrSessionNotFound
		}
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	u.resolveCover(ctx, &session)
	return session, nil
}

// Join admits a user while the session is still waiting. Joining twice is
// a no-op returning the current state. The updated member list is pushed
// to connected clients.
func (u *Usecase) Join(ctx context.Context, id model.SessionID, userID model.UserID) (model.Session, error) {
	if err := u.sessions.AddMember(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			return model.Session{}, ErrSessionNotFound
		case errors.Is(err, ErrInvalidTransition):
			return model.Session{}, ErrInvalidTransition
		default:
			return model.Session{}, errors.Join(ErrInternal, err)
		}
	}

	session, err := u.sessions.ByID(ctx, id)
	if err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}

	u.broadcaster.Publish(id, model.TopicUsers, memberNames(session.Members))
	return session, nil
}

// Leave removes a member from a waiting session. A departure during active
// voting invalidates the whole session: it is force-closed for everyone.
func (u *Usecase) Leave(ctx context.Context, id model.SessionID, userID model.UserID) (model.Session, error) {
	session, err := u.sessions.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return model.Session{}, ErrSessionNotFound
		}
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	if !session.IsMember(userID) {
		return model.Session{}, ErrNotAMember
	}

	switch session.Status {
	case model.StatusWaiting:
		removed, err := u.sessions.RemoveMember(ctx, id, userID)
		if err != nil {
			return model.Session{}, errors.Join(ErrInternal, err)
		}
		if !removed {
			return model.Session{}, ErrNotAMember
		}
		session, err = u.sessions.ByID(ctx, id)
		if err != nil {
			return model.Session{}, errors.Join(ErrInternal, err)
		}
		u.broadcaster.Publish(id, model.TopicUsers, memberNames(session.Members))
		return session, nil

	case model.StatusVoting:
		return u.Close(ctx, id)

	default:
		return model.Session{}, ErrInvalidTransition
	}
}

// StartVoting moves a waiting session with at least 2 members into voting.
// The quorum check and the transition run as one guarded unit, so a member
// leaving concurrently cannot start voting below quorum.
func (u *Usecase) StartVoting(ctx context.Context, id model.SessionID) (model.Session, error) {
	if err := u.sessions.BeginVoting(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			return model.Session{}, ErrSessionNotFound
		case errors.Is(err, ErrQuorumNotMet):
			return model.Session{}, ErrQuorumNotMet
		case errors.Is(err, ErrInvalidTransition):
			return model.Session{}, ErrInvalidTransition
		default:
			return model.Session{}, errors.Join(ErrInternal, err)
		}
	}

	u.broadcaster.Publish(id, model.TopicSessionStatus, string(model.StatusVoting))

	session, err := u.sessions.ByID(ctx, id)
	if err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	return session, nil
}

// Close moves the session to its terminal status. Closing an already
// closed session is a no-op. When at least one match exists, a cover
// derived from the highest-rated matched movie is attached and the final
// result payload is pushed to clients.
func (u *Usecase) Close(ctx context.Context, id model.SessionID) (model.Session, error) {
	session, err := u.sessions.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return model.Session{}, ErrSessionNotFound
		}
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	if session.Status == model.StatusClosed {
		return session, nil
	}

	ok, err := u.sessions.TransitionStatus(ctx, id, session.Status, model.StatusClosed)
	if err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	if !ok {
		// Lost the race to another closer.
		session, err = u.sessions.ByID(ctx, id)
		if err != nil {
			return model.Session{}, errors.Join(ErrInternal, err)
		}
		u.resolveCover(ctx, &session)
		return session, nil
	}
	session.Status = model.StatusClosed

	if len(session.Matches) > 0 {
		u.attachCover(ctx, &session)
	}

	u.broadcaster.Publish(id, model.TopicSessionStatus, string(model.StatusClosed))
	if len(session.Matches) > 0 {
		u.broadcaster.Publish(id, model.TopicSessionResult, map[string]any{
			"id":      string(session.ID),
			"status":  string(session.Status),
			"matches": session.Matches,
		})
	}
	u.resolveCover(ctx, &session)
	return session, nil
}

func (u *Usecase) attachCover(ctx context.Context, session *model.Session) {
	matched, err := u.movies.ByIDs(ctx, session.Matches)
	if err != nil || len(matched) == 0 {
		return
	}
	best := matched[0]
	for _, m := range matched[1:] {
		if m.RatingKP > best.RatingKP {
			best = m
		}
	}
	if best.PosterLink == "" {
		return
	}
	coverLink, err := u.covers.Store(ctx, session.ID, best.PosterLink)
	if err != nil {
		// Cover is cosmetic, closing proceeds without it.
		return
	}
	if err := u.sessions.SetCover(ctx, session.ID, coverLink); err != nil {
		return
	}
	session.CoverLink = coverLink
}

// resolveCover swaps the stored cover key for a downloadable URL. A
// session is still served when the cover cannot be resolved.
func (u *Usecase) resolveCover(ctx context.Context, session *model.Session) {
	if session.CoverLink == "" {
		return
	}
	link, err := u.covers.ResolveLink(ctx, session.CoverLink)
	if err != nil {
		session.CoverLink = ""
		return
	}
	session.CoverLink = link
}

// Matches lists movies every current member voted for.
func (u *Usecase) Matches(ctx context.Context, id model.SessionID) ([]model.Movie, error) {
	ids, err := u.sessions.Matches(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrInternal, err)
	}
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	movies, err := u.movies.ByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return movies, nil
}

// MoviesForSession lists the session's candidate movies with details.
func (u *Usecase) MoviesForSession(ctx context.Context, id model.SessionID) ([]model.Movie, error) {
	session, err := u.sessions.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrInternal, err)
	}
	if len(session.Movies) == 0 {
		return []model.Movie{}, nil
	}
	movies, err := u.movies.ByIDs(ctx, session.Movies)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return movies, nil
}

// ClosedByDevice returns the device owner's closed sessions (history).
func (u *Usecase) ClosedByDevice(ctx context.Context, deviceID string) ([]model.Session, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", ErrValidation)
	}
	user, err := u.users.ByDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown device %q", ErrValidation, deviceID)
	}
	sessions, err := u.sessions.ClosedByUser(ctx, user.ID)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	for i := range sessions {
		u.resolveCover(ctx, &sessions[i])
	}
	return sessions, nil
}

func memberNames(members []model.User) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}
