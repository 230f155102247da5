package usecase_vote

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/moviematch/core/internal/model"
	mocks "github.com/moviematch/core/internal/usecase/vote/mocks/vote"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type UsecaseVoteUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase     *Usecase
	votes       *mocks.VoteRepository
	sessions    *mocks.SessionReader
	broadcaster *mocks.Broadcaster
	ctx         context.Context
}

func initResources(t provider.T) *resources {
	votes := mocks.NewVoteRepository(t)
	sessions := mocks.NewSessionReader(t)
	broadcaster := mocks.NewBroadcaster(t)
	usecase := New(votes, sessions, broadcaster)

	return &resources{
		usecase:     usecase,
		votes:       votes,
		sessions:    sessions,
		broadcaster: broadcaster,
		ctx:         context.Background(),
	}
}

func votingSession(id model.SessionID, member model.UserID) model.Session {
	return model.Session{
		ID:     id,
		Status: model.StatusVoting,
		Members: []model.User{
			{ID: member, Name: "Alice"},
			{ID: uuid.New(), Name: "Bob"},
		},
		Movies:  []model.MovieID{101, 102, 103},
		Matches: []model.MovieID{103},
	}
}

func (s *UsecaseVoteUnitSuite) TestLike(t provider.T) {
	t.Parallel()

	sessionID := model.SessionID("AB12CD34")
	userID := uuid.New()

	testCases := []struct {
		name          string
		movieID       model.MovieID
		setupMocks    func(r *resources)
		expectError   bool
		expectedError error
	}{
		{
			name:    "Should record vote",
			movieID: 101,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(votingSession(sessionID, userID), nil).Once()
				r.votes.On("InsertAndTally", r.ctx, model.Vote{
					SessionID: sessionID, UserID: userID, MovieID: 101,
				}).Return(false, nil).Once()
			},
			expectError: false,
		},
		{
			name:    "Should broadcast movie id when vote completes the quorum",
			movieID: 102,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(votingSession(sessionID, userID), nil).Once()
				r.votes.On("InsertAndTally", r.ctx, model.Vote{
					SessionID: sessionID, UserID: userID, MovieID: 102,
				}).Return(true, nil).Once()
				r.broadcaster.On("Publish", sessionID, model.TopicMatches, model.MovieID(102)).Once()
			},
			expectError: false,
		},
		{
			name:    "Should report duplicate vote as benign",
			movieID: 101,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(votingSession(sessionID, userID), nil).Once()
				r.votes.On("InsertAndTally", r.ctx, model.Vote{
					SessionID: sessionID, UserID: userID, MovieID: 101,
				}).Return(false, ErrDuplicateVote).Once()
			},
			expectError: true, expectedError: ErrDuplicateVote,
		},
		{
			name:    "Should surface voting ending between read and locked insert",
			movieID: 101,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(votingSession(sessionID, userID), nil).Once()
				r.votes.On("InsertAndTally", r.ctx, model.Vote{
					SessionID: sessionID, UserID: userID, MovieID: 101,
				}).Return(false, ErrWrongStatus).Once()
			},
			expectError: true, expectedError: ErrWrongStatus,
		},
		{
			name:    "Should return not found for unknown session",
			movieID: 101,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(model.Session{}, ErrSessionNotFound).Once()
			},
			expectError: true, expectedError: ErrSessionNotFound,
		},
		{
			name:    "Should reject vote outside voting status",
			movieID: 101,
			setupMocks: func(r *resources) {
				session := votingSession(sessionID, userID)
				session.Status = model.StatusWaiting
				r.sessions.On("ByID", r.ctx, sessionID).Return(session, nil).Once()
			},
			expectError: true, expectedError: ErrWrongStatus,
		},
		{
			name:    "Should reject vote from a non-member",
			movieID: 101,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(votingSession(sessionID, uuid.New()), nil).Once()
			},
			expectError: true, expectedError: ErrNotAMember,
		},
		{
			name:    "Should reject vote for a movie outside the candidate list",
			movieID: 999,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(votingSession(sessionID, userID), nil).Once()
			},
			expectError: true, expectedError: ErrNotACandidate,
		},
		{
			name:    "Should reject vote for an already matched movie",
			movieID: 103,
			setupMocks: func(r *resources) {
				r.sessions.On("ByID", r.ctx, sessionID).
					Return(votingSession(sessionID, userID), nil).Once()
			},
			expectError: true, expectedError: ErrAlreadyMatched,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			vote, err := r.usecase.Like(r.ctx, sessionID, userID, tc.movieID)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.movieID, vote.MovieID)
			}
			r.votes.AssertExpectations(t)
			r.broadcaster.AssertExpectations(t)
		})
	}
}

func (s *UsecaseVoteUnitSuite) TestUnlike(t provider.T) {
	t.Parallel()

	sessionID := model.SessionID("AB12CD34")
	userID := uuid.New()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources)
		expected    bool
		expectError bool
	}{
		{
			name: "Should remove existing vote",
			setupMocks: func(r *resources) {
				r.votes.On("Delete", r.ctx, model.Vote{
					SessionID: sessionID, UserID: userID, MovieID: 101,
				}).Return(true, nil).Once()
			},
			expected: true,
		},
		{
			name: "Should report absent vote without error",
			setupMocks: func(r *resources) {
				r.votes.On("Delete", r.ctx, model.Vote{
					SessionID: sessionID, UserID: userID, MovieID: 101,
				}).Return(false, nil).Once()
			},
			expected: false,
		},
		{
			name: "Should wrap repository failure",
			setupMocks: func(r *resources) {
				r.votes.On("Delete", r.ctx, model.Vote{
					SessionID: sessionID, UserID: userID, MovieID: 101,
				}).Return(false, assert.AnError).Once()
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			removed, err := r.usecase.Unlike(r.ctx, sessionID, userID, 101)

			if tc.expectError {
				assert.ErrorIs(t, err, ErrInternal)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, removed)
			}
			r.votes.AssertExpectations(t)
		})
	}
}

func TestVoteUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseVoteUnitSuite))
}
