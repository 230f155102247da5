package infra_postgres_vote

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/moviematch/core/internal/model"
	usecase_vote "github.com/moviematch/core/internal/usecase/vote"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

// InsertAndTally runs the vote insert and the quorum check as one unit:
// the session row lock serializes tallies per session, the unique
// constraint on (session_id, user_id, movie_id) rejects duplicates, and
// the conditional match insert reports whether this vote crossed the
// quorum. Only the crossing insert sees matched=true.
func (d *Driver) InsertAndTally(ctx context.Context, vote model.Vote) (bool, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	lockQuery := `SELECT status FROM sessions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &status, lockQuery, string(vote.SessionID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, usecase_vote.ErrSessionNotFound
		}
		return false, err
	}
	// The usecase checks the status too, but without the row lock: a
	// concurrent leave or close may have ended voting since then.
	if model.SessionStatus(status) != model.StatusVoting {
		return false, usecase_vote.ErrWrongStatus
	}

	insertQuery := `
		INSERT INTO votes (session_id, user_id, movie_id)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, insertQuery, string(vote.SessionID), vote.UserID, int(vote.MovieID)); err != nil {
		if strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key") {
			return false, usecase_vote.ErrDuplicateVote
		}
		return false, err
	}

	var counts struct {
		Voters  int `db:"voters"`
		Members int `db:"members"`
	}
	countQuery := `
		SELECT
			(SELECT COUNT(DISTINCT user_id) FROM votes
			 WHERE session_id = $1 AND movie_id = $2) AS voters,
			(SELECT COUNT(*) FROM session_members
			 WHERE session_id = $1) AS members
	`
	if err := tx.GetContext(ctx, &counts, countQuery, string(vote.SessionID), int(vote.MovieID)); err != nil {
		return false, err
	}

	matched := false
	if counts.Members > 0 && counts.Voters == counts.Members {
		matchQuery := `
			INSERT INTO session_matches (session_id, movie_id)
			VALUES ($1, $2)
			ON CONFLICT (session_id, movie_id) DO NOTHING
		`
		result, err := tx.ExecContext(ctx, matchQuery, string(vote.SessionID), int(vote.MovieID))
		if err != nil {
			return false, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}
		matched = rowsAffected > 0
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return matched, nil
}

func (d *Driver) Delete(ctx context.Context, vote model.Vote) (bool, error) {
	query := `
		DELETE FROM votes
		WHERE session_id = $1 AND user_id = $2 AND movie_id = $3
	`
	result, err := d.db.ExecContext(ctx, query, string(vote.SessionID), vote.UserID, int(vote.MovieID))
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
