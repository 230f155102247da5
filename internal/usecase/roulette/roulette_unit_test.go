package usecase_roulette

import (
	"context"
	"testing"

	"github.com/moviematch/core/internal/model"
	mocks "github.com/moviematch/core/internal/usecase/roulette/mocks/roulette"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseRouletteUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase     *Usecase
	matches     *mocks.MatchRepository
	closer      *mocks.SessionCloser
	broadcaster *mocks.Broadcaster
	ctx         context.Context
}

func initResources(t provider.T) *resources {
	matches := mocks.NewMatchRepository(t)
	closer := mocks.NewSessionCloser(t)
	broadcaster := mocks.NewBroadcaster(t)
	usecase := New(matches, closer, broadcaster)

	return &resources{
		usecase:     usecase,
		matches:     matches,
		closer:      closer,
		broadcaster: broadcaster,
		ctx:         context.Background(),
	}
}

func (s *UsecaseRouletteUnitSuite) TestSpin(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")

	testCases := []struct {
		name          string
		setupMocks    func(r *resources)
		candidates    []model.MovieID
		expectError   bool
		expectedError error
	}{
		{
			name:       "Should pick a winner and close the session",
			candidates: []model.MovieID{101, 102, 103},
			setupMocks: func(r *resources) {
				r.matches.On("Matches", r.ctx, id).
					Return([]model.MovieID{101, 102, 103}, nil).Once()
				r.broadcaster.On("Publish", id, model.TopicSessionStatus, "roulette").Once()
				r.broadcaster.On("Publish", id, model.TopicRoulette, mock.AnythingOfType("model.MovieID")).Once()
				r.closer.On("Close", r.ctx, id).
					Return(model.Session{ID: id, Status: model.StatusClosed}, nil).Once()
			},
			expectError: false,
		},
		{
			name: "Should refuse to spin over exactly two matches",
			setupMocks: func(r *resources) {
				r.matches.On("Matches", r.ctx, id).
					Return([]model.MovieID{101, 102}, nil).Once()
			},
			expectError: true, expectedError: ErrInsufficientMatches,
		},
		{
			name: "Should refuse to spin with no matches",
			setupMocks: func(r *resources) {
				r.matches.On("Matches", r.ctx, id).
					Return([]model.MovieID{}, nil).Once()
			},
			expectError: true, expectedError: ErrInsufficientMatches,
		},
		{
			name: "Should return not found for unknown session",
			setupMocks: func(r *resources) {
				r.matches.On("Matches", r.ctx, id).
					Return(nil, ErrSessionNotFound).Once()
			},
			expectError: true, expectedError: ErrSessionNotFound,
		},
		{
			name: "Should wrap close failure",
			setupMocks: func(r *resources) {
				r.matches.On("Matches", r.ctx, id).
					Return([]model.MovieID{101, 102, 103}, nil).Once()
				r.broadcaster.On("Publish", id, model.TopicSessionStatus, "roulette").Once()
				r.broadcaster.On("Publish", id, model.TopicRoulette, mock.AnythingOfType("model.MovieID")).Once()
				r.closer.On("Close", r.ctx, id).
					Return(model.Session{}, assert.AnError).Once()
			},
			expectError: true, expectedError: ErrInternal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			winner, err := r.usecase.Spin(r.ctx, id)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Contains(t, tc.candidates, winner)
			}
			r.matches.AssertExpectations(t)
			r.closer.AssertExpectations(t)
			r.broadcaster.AssertExpectations(t)
		})
	}
}

func TestRouletteUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRouletteUnitSuite))
}
