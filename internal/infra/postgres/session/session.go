package infra_postgres_session

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/moviematch/core/internal/model"
	usecase_session "github.com/moviematch/core/internal/usecase/session"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type sessionDTO struct {
	ID        string         `db:"id"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	CoverLink sql.NullString `db:"cover_link"`
}

type memberDTO struct {
	ID       uuid.UUID `db:"id"`
	Name     string    `db:"name"`
	DeviceID string    `db:"device_id"`
}

func (d *Driver) Create(ctx context.Context, session model.Session) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO sessions (id, status, created_at)
		VALUES ($1, $2, NOW())
	`
	if _, err := tx.ExecContext(ctx, query, string(session.ID), string(session.Status)); err != nil {
		if strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key") {
			return usecase_session.ErrCodeConflict
		}
		return err
	}

	memberQuery := `
		INSERT INTO session_members (session_id, user_id)
		VALUES ($1, $2)
	`
	for _, member := range session.Members {
		if _, err := tx.ExecContext(ctx, memberQuery, string(session.ID), member.ID); err != nil {
			return err
		}
	}

	movieQuery := `
		INSERT INTO session_movies (session_id, movie_id)
		VALUES ($1, $2)
	`
	for _, movieID := range session.Movies {
		if _, err := tx.ExecContext(ctx, movieQuery, string(session.ID), int(movieID)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *Driver) ByID(ctx context.Context, id model.SessionID) (model.Session, error) {
	var dto sessionDTO

	query := `
		SELECT id, status, created_at, cover_link
		FROM sessions
		WHERE id = $1
	`
	err := d.db.GetContext(ctx, &dto, query, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, usecase_session.ErrSessionNotFound
		}
		return model.Session{}, err
	}

	session := model.Session{
		ID:        model.SessionID(dto.ID),
		Status:    model.SessionStatus(dto.Status),
		CreatedAt: dto.CreatedAt,
		CoverLink: dto.CoverLink.String,
	}

	if session.Members, err = d.Members(ctx, id); err != nil {
		return model.Session{}, err
	}
	if session.Movies, err = d.movieIDs(ctx, id, "session_movies"); err != nil {
		return model.Session{}, err
	}
	if session.Matches, err = d.movieIDs(ctx, id, "session_matches"); err != nil {
		return model.Session{}, err
	}

	return session, nil
}

func (d *Driver) statusByID(ctx context.Context, id model.SessionID) (model.SessionStatus, error) {
	var status string

	query := `SELECT status FROM sessions WHERE id = $1`

	err := d.db.GetContext(ctx, &status, query, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", usecase_session.ErrSessionNotFound
		}
		return "", err
	}
	return model.SessionStatus(status), nil
}

// AddMember holds the session row lock while checking status, so two
// concurrent joins cannot both pass the gate.
func (d *Driver) AddMember(ctx context.Context, id model.SessionID, userID model.UserID) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	lockQuery := `SELECT status FROM sessions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &status, lockQuery, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return usecase_session.ErrSessionNotFound
		}
		return err
	}
	if model.SessionStatus(status) != model.StatusWaiting {
		return usecase_session.ErrInvalidTransition
	}

	insertQuery := `
		INSERT INTO session_members (session_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, insertQuery, string(id), userID); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) RemoveMember(ctx context.Context, id model.SessionID, userID model.UserID) (bool, error) {
	query := `
		DELETE FROM session_members
		WHERE session_id = $1 AND user_id = $2
	`
	result, err := d.db.ExecContext(ctx, query, string(id), userID)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (d *Driver) Members(ctx context.Context, id model.SessionID) ([]model.User, error) {
	var dtos []memberDTO

	query := `
		SELECT u.id, u.name, u.device_id
		FROM users u
		JOIN session_members sm ON sm.user_id = u.id
		WHERE sm.session_id = $1
		ORDER BY u.name
	`
	if err := d.db.SelectContext(ctx, &dtos, query, string(id)); err != nil {
		return nil, err
	}

	members := make([]model.User, len(dtos))
	for i, dto := range dtos {
		members[i] = model.User{
			ID:       dto.ID,
			Name:     dto.Name,
			DeviceID: dto.DeviceID,
		}
	}
	return members, nil
}

// BeginVoting checks the quorum and applies the waiting-to-voting
// transition under the session row lock, so a concurrent member removal
// cannot shrink the session below quorum after the check.
func (d *Driver) BeginVoting(ctx context.Context, id model.SessionID) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	lockQuery := `SELECT status FROM sessions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &status, lockQuery, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return usecase_session.ErrSessionNotFound
		}
		return err
	}
	if !model.SessionStatus(status).CanTransition(model.StatusVoting) {
		return usecase_session.ErrInvalidTransition
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM session_members WHERE session_id = $1`
	if err := tx.GetContext(ctx, &count, countQuery, string(id)); err != nil {
		return err
	}
	if count < 2 {
		return usecase_session.ErrQuorumNotMet
	}

	updateQuery := `UPDATE sessions SET status = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, string(model.StatusVoting), string(id)); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) TransitionStatus(ctx context.Context, id model.SessionID, from, to model.SessionStatus) (bool, error) {
	query := `
		UPDATE sessions
		SET status = $1
		WHERE id = $2 AND status = $3
	`
	result, err := d.db.ExecContext(ctx, query, string(to), string(id), string(from))
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected == 0 {
		// Distinguish a missed precondition from a missing session.
		if _, err := d.statusByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (d *Driver) Matches(ctx context.Context, id model.SessionID) ([]model.MovieID, error) {
	if _, err := d.statusByID(ctx, id); err != nil {
		return nil, err
	}
	return d.movieIDs(ctx, id, "session_matches")
}

func (d *Driver) SetCover(ctx context.Context, id model.SessionID, coverLink string) error {
	query := `
		UPDATE sessions
		SET cover_link = $1
		WHERE id = $2
	`
	result, err := d.db.ExecContext(ctx, query, coverLink, string(id))
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_session.ErrSessionNotFound
	}
	return nil
}

func (d *Driver) ClosedByUser(ctx context.Context, userID model.UserID) ([]model.Session, error) {
	var dtos []sessionDTO

	query := `
		SELECT s.id, s.status, s.created_at, s.cover_link
		FROM sessions s
		JOIN session_members sm ON sm.session_id = s.id
		WHERE sm.user_id = $1 AND s.status = $2
		ORDER BY s.created_at DESC
	`
	if err := d.db.SelectContext(ctx, &dtos, query, userID, string(model.StatusClosed)); err != nil {
		return nil, err
	}

	sessions := make([]model.Session, 0, len(dtos))
	for _, dto := range dtos {
		matches, err := d.movieIDs(ctx, model.SessionID(dto.ID), "session_matches")
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, model.Session{
			ID:        model.SessionID(dto.ID),
			Status:    model.SessionStatus(dto.Status),
			CreatedAt: dto.CreatedAt,
			CoverLink: dto.CoverLink.String,
			Matches:   matches,
		})
	}
	return sessions, nil
}

func (d *Driver) movieIDs(ctx context.Context, id model.SessionID, table string) ([]model.MovieID, error) {
	var ids []int

	query := `SELECT movie_id FROM ` + table + ` WHERE session_id = $1 ORDER BY movie_id`
	if err := d.db.SelectContext(ctx, &ids, query, string(id)); err != nil {
		return nil, err
	}

	movieIDs := make([]model.MovieID, len(ids))
	for i, raw := range ids {
		movieIDs[i] = model.MovieID(raw)
	}
	return movieIDs, nil
}
