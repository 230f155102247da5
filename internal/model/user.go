package model

import "github.com/google/uuid"

type UserID = uuid.UUID

// MaxDeviceIDLen bounds the opaque per-installation identifier
// used in place of conventional login.
const MaxDeviceIDLen = 24

const MaxUserNameLen = 16

type User struct {
	ID       UserID
	Name     string
	DeviceID string
}
