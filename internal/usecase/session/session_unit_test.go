package usecase_session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/moviematch/core/internal/model"
	mocks "github.com/moviematch/core/internal/usecase/session/mocks/session"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseSessionUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase     *Usecase
	sessionRepo *mocks.SessionRepository
	users       *mocks.UserProvider
	movies      *mocks.MovieProvider
	covers      *mocks.CoverStore
	broadcaster *mocks.Broadcaster
	ctx         context.Context
}

func initResources(t provider.T) *resources {
	sessionRepo := mocks.NewSessionRepository(t)
	users := mocks.NewUserProvider(t)
	movies := mocks.NewMovieProvider(t)
	covers := mocks.NewCoverStore(t)
	broadcaster := mocks.NewBroadcaster(t)
	usecase := New(sessionRepo, users, movies, covers, broadcaster)

	return &resources{
		usecase:     usecase,
		sessionRepo: sessionRepo,
		users:       users,
		movies:      movies,
		covers:      covers,
		broadcaster: broadcaster,
		ctx:         context.Background(),
	}
}

func validDeviceID() string {
	return "device-1234"
}

func validUser() model.User {
	return model.User{ID: uuid.New(), Name: "Alice", DeviceID: validDeviceID()}
}

func validMovies() []model.Movie {
	return []model.Movie{
		{ID: 101, Name: "First"},
		{ID: 102, Name: "Second"},
		{ID: 103, Name: "Third"},
	}
}

func (s *UsecaseSessionUnitSuite) TestCreate(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		deviceID      string
		setupMocks    func(r *resources)
		expectError   bool
		expectedError error
	}{
		{
			name:     "Should create session in waiting status",
			deviceID: validDeviceID(),
			setupMocks: func(r *resources) {
				r.users.On("ByDevice", r.ctx, validDeviceID()).Return(validUser(), nil).Once()
				r.movies.On("ResolveByFilter", r.ctx, mock.AnythingOfType("model.MovieFilter")).
					Return(validMovies(), nil).Once()
				r.sessionRepo.On("Create", r.ctx, mock.AnythingOfType("model.Session")).Return(nil).Once()
			},
			expectError: false,
		},
		{
			name:        "Should reject empty device id",
			deviceID:    "",
			setupMocks:  func(r *resources) {},
			expectError: true, expectedError: ErrValidation,
		},
		{
			name:     "Should reject unknown device",
			deviceID: validDeviceID(),
			setupMocks: func(r *resources) {
				r.users.On("ByDevice", r.ctx, validDeviceID()).Return(model.User{}, ErrValidation).Once()
			},
			expectError: true, expectedError: ErrValidation,
		},
		{
			name:     "Should report catalog failure",
			deviceID: validDeviceID(),
			setupMocks: func(r *resources) {
				r.users.On("ByDevice", r.ctx, validDeviceID()).Return(validUser(), nil).Once()
				r.movies.On("ResolveByFilter", r.ctx, mock.AnythingOfType("model.MovieFilter")).
					Return(nil, ErrCatalogUnavailable).Once()
			},
			expectError: true, expectedError: ErrCatalogUnavailable,
		},
		{
			name:     "Should report empty catalog as unavailable",
			deviceID: validDeviceID(),
			setupMocks: func(r *resources) {
				r.users.On("ByDevice", r.ctx, validDeviceID()).Return(validUser(), nil).Once()
				r.movies.On("ResolveByFilter", r.ctx, mock.AnythingOfType("model.MovieFilter")).
					Return([]model.Movie{}, nil).Once()
			},
			expectError: true, expectedError: ErrCatalogUnavailable,
		},
		{
			name:     "Should retry on id conflict and succeed",
			deviceID: validDeviceID(),
			setupMocks: func(r *resources) {
				r.users.On("ByDevice", r.ctx, validDeviceID()).Return(validUser(), nil).Once()
				r.movies.On("ResolveByFilter", r.ctx, mock.AnythingOfType("model.MovieFilter")).
					Return(validMovies(), nil).Once()
				r.sessionRepo.On("Create", r.ctx, mock.AnythingOfType("model.Session")).
					Return(ErrCodeConflict).Once()
				r.sessionRepo.On("Create", r.ctx, mock.AnythingOfType("model.Session")).
					Return(nil).Once()
			},
			expectError: false,
		},
		{
			name:     "Should give up after exhausting id retries",
			deviceID: validDeviceID(),
			setupMocks: func(r *resources) {
				r.users.On("ByDevice", r.ctx, validDeviceID()).Return(validUser(), nil).Once()
				r.movies.On("ResolveByFilter", r.ctx, mock.AnythingOfType("model.MovieFilter")).
					Return(validMovies(), nil).Once()
				r.sessionRepo.On("Create", r.ctx, mock.AnythingOfType("model.Session")).
					Return(ErrCodeConflict).Times(3)
			},
			expectError: true, expectedError: ErrSessionsUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			session, err := r.usecase.Create(r.ctx, tc.deviceID, model.MovieFilter{Genres: []string{"драма"}})

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Len(t, string(session.ID), 8)
				assert.Equal(t, model.StatusWaiting, session.Status)
				assert.Len(t, session.Members, 1)
				assert.Len(t, session.Movies, len(validMovies()))
			}
			r.sessionRepo.AssertExpectations(t)
		})
	}
}

func (s *UsecaseSessionUnitSuite) TestJoin(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")
	user := validUser()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources)
		expectError   bool
		expectedError error
	}{
		{
			name: "Should join and broadcast member names",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("AddMember", r.ctx, id, user.ID).Return(nil).Once()
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:      id,
					Status:  model.StatusWaiting,
					Members: []model.User{{Name: "Alice"}, {Name: "Bob"}},
				}, nil).Once()
				r.broadcaster.On("Publish", id, model.TopicUsers, []string{"Alice", "Bob"}).Once()
			},
			expectError: false,
		},
		{
			name: "Should return not found for unknown session",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("AddMember", r.ctx, id, user.ID).Return(ErrSessionNotFound).Once()
			},
			expectError: true, expectedError: ErrSessionNotFound,
		},
		{
			name: "Should reject join after voting started",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("AddMember", r.ctx, id, user.ID).Return(ErrInvalidTransition).Once()
			},
			expectError: true, expectedError: ErrInvalidTransition,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			_, err := r.usecase.Join(r.ctx, id, user.ID)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
			r.sessionRepo.AssertExpectations(t)
			r.broadcaster.AssertExpectations(t)
		})
	}
}

func (s *UsecaseSessionUnitSuite) TestLeave(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")
	user := validUser()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources)
		expectError   bool
		expectedError error
		expectClosed  bool
	}{
		{
			name: "Should remove member from waiting session",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:      id,
					Status:  model.StatusWaiting,
					Members: []model.User{user, {ID: uuid.New(), Name: "Bob"}},
				}, nil).Once()
				r.sessionRepo.On("RemoveMember", r.ctx, id, user.ID).Return(true, nil).Once()
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:      id,
					Status:  model.StatusWaiting,
					Members: []model.User{{Name: "Bob"}},
				}, nil).Once()
				r.broadcaster.On("Publish", id, model.TopicUsers, []string{"Bob"}).Once()
			},
			expectError: false,
		},
		{
			name: "Should force-close session when leaving during voting",
			setupMocks: func(r *resources) {
				voting := model.Session{
					ID:      id,
					Status:  model.StatusVoting,
					Members: []model.User{user, {ID: uuid.New(), Name: "Bob"}},
				}
				r.sessionRepo.On("ByID", r.ctx, id).Return(voting, nil).Twice()
				r.sessionRepo.On("TransitionStatus", r.ctx, id, model.StatusVoting, model.StatusClosed).
					Return(true, nil).Once()
				r.broadcaster.On("Publish", id, model.TopicSessionStatus, string(model.StatusClosed)).Once()
			},
			expectError:  false,
			expectClosed: true,
		},
		{
			name: "Should reject leaving a closed session",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:      id,
					Status:  model.StatusClosed,
					Members: []model.User{user},
				}, nil).Once()
			},
			expectError: true, expectedError: ErrInvalidTransition,
		},
		{
			name: "Should reject leave from a non-member",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:      id,
					Status:  model.StatusWaiting,
					Members: []model.User{{ID: uuid.New(), Name: "Bob"}},
				}, nil).Once()
			},
			expectError: true, expectedError: ErrNotAMember,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			session, err := r.usecase.Leave(r.ctx, id, user.ID)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				if tc.expectClosed {
					assert.Equal(t, model.StatusClosed, session.Status)
				}
			}
			r.sessionRepo.AssertExpectations(t)
			r.broadcaster.AssertExpectations(t)
		})
	}
}

func (s *UsecaseSessionUnitSuite) TestStartVoting(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")

	testCases := []struct {
		name          string
		setupMocks    func(r *resources)
		expectError   bool
		expectedError error
	}{
		{
			name: "Should start voting with enough members",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("BeginVoting", r.ctx, id).Return(nil).Once()
				r.broadcaster.On("Publish", id, model.TopicSessionStatus, string(model.StatusVoting)).Once()
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:     id,
					Status: model.StatusVoting,
				}, nil).Once()
			},
			expectError: false,
		},
		{
			name: "Should reject start below quorum",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("BeginVoting", r.ctx, id).Return(ErrQuorumNotMet).Once()
			},
			expectError: true, expectedError: ErrQuorumNotMet,
		},
		{
			name: "Should reject start when session is not waiting",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("BeginVoting", r.ctx, id).Return(ErrInvalidTransition).Once()
			},
			expectError: true, expectedError: ErrInvalidTransition,
		},
		{
			name: "Should return not found for unknown session",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("BeginVoting", r.ctx, id).Return(ErrSessionNotFound).Once()
			},
			expectError: true, expectedError: ErrSessionNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			session, err := r.usecase.StartVoting(r.ctx, id)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, model.StatusVoting, session.Status)
			}
			r.sessionRepo.AssertExpectations(t)
			r.broadcaster.AssertExpectations(t)
		})
	}
}

func (s *UsecaseSessionUnitSuite) TestClose(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")

	testCases := []struct {
		name        string
		setupMocks  func(r *resources)
		expectError bool
		expectCover string
	}{
		{
			name: "Should close without cover when nothing matched",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:     id,
					Status: model.StatusVoting,
				}, nil).Once()
				r.sessionRepo.On("TransitionStatus", r.ctx, id, model.StatusVoting, model.StatusClosed).
					Return(true, nil).Once()
				r.broadcaster.On("Publish", id, model.TopicSessionStatus, string(model.StatusClosed)).Once()
			},
			expectError: false,
		},
		{
			name: "Should attach cover from highest rated match",
			setupMocks: func(r *resources) {
				matches := []model.MovieID{101, 102}
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:      id,
					Status:  model.StatusVoting,
					Matches: matches,
				}, nil).Once()
				r.sessionRepo.On("TransitionStatus", r.ctx, id, model.StatusVoting, model.StatusClosed).
					Return(true, nil).Once()
				r.movies.On("ByIDs", r.ctx, matches).Return([]model.Movie{
					{ID: 101, RatingKP: 7.1, PosterLink: "https://posters/101.jpg"},
					{ID: 102, RatingKP: 8.9, PosterLink: "https://posters/102.jpg"},
				}, nil).Once()
				r.covers.On("Store", r.ctx, id, "https://posters/102.jpg").
					Return("covers/AB12CD34.jpg", nil).Once()
				r.sessionRepo.On("SetCover", r.ctx, id, "covers/AB12CD34.jpg").Return(nil).Once()
				r.broadcaster.On("Publish", id, model.TopicSessionStatus, string(model.StatusClosed)).Once()
				r.broadcaster.On("Publish", id, model.TopicSessionResult, mock.Anything).Once()
				r.covers.On("ResolveLink", r.ctx, "covers/AB12CD34.jpg").
					Return("https://storage/covers/AB12CD34.jpg", nil).Once()
			},
			expectError: false,
			expectCover: "https://storage/covers/AB12CD34.jpg",
		},
		{
			name: "Should be a no-op on an already closed session",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:     id,
					Status: model.StatusClosed,
				}, nil).Once()
			},
			expectError: false,
		},
		{
			name: "Should tolerate losing the close race",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:     id,
					Status: model.StatusVoting,
				}, nil).Once()
				r.sessionRepo.On("TransitionStatus", r.ctx, id, model.StatusVoting, model.StatusClosed).
					Return(false, nil).Once()
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:     id,
					Status: model.StatusClosed,
				}, nil).Once()
			},
			expectError: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			session, err := r.usecase.Close(r.ctx, id)

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, model.StatusClosed, session.Status)
				if tc.expectCover != "" {
					assert.Equal(t, tc.expectCover, session.CoverLink)
				}
			}
			r.sessionRepo.AssertExpectations(t)
			r.covers.AssertExpectations(t)
			r.broadcaster.AssertExpectations(t)
		})
	}
}

func (s *UsecaseSessionUnitSuite) TestMatches(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")

	testCases := []struct {
		name          string
		setupMocks    func(r *resources)
		expectedCount int
		expectError   bool
		expectedError error
	}{
		{
			name: "Should list matched movies",
			setupMocks: func(r *resources) {
				ids := []model.MovieID{101, 102}
				r.sessionRepo.On("Matches", r.ctx, id).Return(ids, nil).Once()
				r.movies.On("ByIDs", r.ctx, ids).Return([]model.Movie{
					{ID: 101}, {ID: 102},
				}, nil).Once()
			},
			expectedCount: 2,
		},
		{
			name: "Should return empty list when nothing matched",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("Matches", r.ctx, id).Return([]model.MovieID{}, nil).Once()
			},
			expectedCount: 0,
		},
		{
			name: "Should return not found for unknown session",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("Matches", r.ctx, id).Return(nil, ErrSessionNotFound).Once()
			},
			expectError: true, expectedError: ErrSessionNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			movies, err := r.usecase.Matches(r.ctx, id)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Len(t, movies, tc.expectedCount)
			}
			r.sessionRepo.AssertExpectations(t)
		})
	}
}

func (s *UsecaseSessionUnitSuite) TestMoviesForSession(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")

	testCases := []struct {
		name          string
		setupMocks    func(r *resources)
		expectedCount int
		expectError   bool
		expectedError error
	}{
		{
			name: "Should list candidate movies with details",
			setupMocks: func(r *resources) {
				candidates := []model.MovieID{101, 102, 103}
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:     id,
					Status: model.StatusVoting,
					Movies: candidates,
				}, nil).Once()
				r.movies.On("ByIDs", r.ctx, candidates).Return([]model.Movie{
					{ID: 101}, {ID: 102}, {ID: 103},
				}, nil).Once()
			},
			expectedCount: 3,
		},
		{
			name: "Should return empty list for a session without candidates",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{
					ID:     id,
					Status: model.StatusWaiting,
				}, nil).Once()
			},
			expectedCount: 0,
		},
		{
			name: "Should return not found for unknown session",
			setupMocks: func(r *resources) {
				r.sessionRepo.On("ByID", r.ctx, id).Return(model.Session{}, ErrSessionNotFound).Once()
			},
			expectError: true, expectedError: ErrSessionNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			movies, err := r.usecase.MoviesForSession(r.ctx, id)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Len(t, movies, tc.expectedCount)
			}
			r.sessionRepo.AssertExpectations(t)
			r.movies.AssertExpectations(t)
		})
	}
}

func TestSessionUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseSessionUnitSuite))
}
