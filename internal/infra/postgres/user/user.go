package infra_postgres_user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/moviematch/core/internal/model"
	usecase_user "github.com/moviematch/core/internal/usecase/user"
)

var ErrDuplicateDevice = errors.New("device id already registered")

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type userDTO struct {
	ID       uuid.UUID `db:"id"`
	Name     string    `db:"name"`
	DeviceID string    `db:"device_id"`
}

func (d *Driver) Create(ctx context.Context, user model.User) error {
	query := `
		INSERT INTO users (id, name, device_id)
		VALUES (:id, :name, :device_id)
	`
	_, err := d.db.NamedExecContext(ctx, query, userDTO{
		ID:       user.ID,
		Name:     user.Name,
		DeviceID: user.DeviceID,
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateDevice
		}
		return err
	}
	return nil
}

func (d *Driver) ByDevice(ctx context.Context, deviceID string) (model.User, error) {
	var dto userDTO

	query := `SELECT id, name, device_id FROM users WHERE device_id = $1`

	err := d.db.GetContext(ctx, &dto, query, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, usecase_user.ErrUserNotFound
		}
		return model.User{}, err
	}
	return model.User{
		ID:       dto.ID,
		Name:     dto.Name,
		DeviceID: dto.DeviceID,
	}, nil
}

func (d *Driver) UpdateName(ctx context.Context, deviceID string, name string) error {
	query := `UPDATE users SET name = $1 WHERE device_id = $2`

	result, err := d.db.ExecContext(ctx, query, name, deviceID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_user.ErrUserNotFound
	}
	return nil
}
