package models

import (
	"errors"
	"time"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// CreatedAtLayout is UTC without zone suffix, microsecond precision.
const CreatedAtLayout = "2006-01-02T15:04:05.000000"

var ErrInvalidRole = errors.New("role must be 'user' or 'bot'")

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

type Message struct {
	ID            int64   `db:"id" json:"id"`
	Role          Role    `db:"role" json:"role"`
	Text          *string `db:"text" json:"text"`                     // nullable
	AudioFilename *string `db:"audio_filename" json:"audio_filename"` // nullable, file in the content dir
	CreatedAt     string  `db:"created_at" json:"created_at"`
}

func NewCreatedAt(now time.Time) string {
	return now.UTC().Format(CreatedAtLayout)
}

// Present reports whether an optional field carries a non-empty value.
func Present(s *string) bool {
	return s != nil && *s != ""
}

func StrPtr(s string) *string {
	return &s
}
