package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMessageStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageStore(pool *pgxpool.Pool) *PostgresMessageStore {
	return &PostgresMessageStore{pool: pool}
}

func (s *PostgresMessageStore) Acquire(ctx context.Context) (ports.MessageHandle, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire postgres conn: %w", err)
	}
	return &postgresMessageRepo{conn: conn}, nil
}

func (s *PostgresMessageStore) Close() {
	s.pool.Close()
}

// postgresMessageRepo runs every query on the one connection it was handed.
type postgresMessageRepo struct {
	conn *pgxpool.Conn
}

func (r *postgresMessageRepo) Release() {
	r.conn.Release()
}

func (r *postgresMessageRepo) ListMessages(ctx context.Context) ([]models.Message, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, role, text, audio_filename, created_at
		FROM messages
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Text, &m.AudioFilename, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return out, nil
}

func (r *postgresMessageRepo) InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if !msg.Role.Valid() {
		return nil, models.ErrInvalidRole
	}

	msg.CreatedAt = models.NewCreatedAt(time.Now())

	query := `
		INSERT INTO messages (role, text, audio_filename, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	row := r.conn.QueryRow(ctx, query, msg.Role, msg.Text, msg.AudioFilename, msg.CreatedAt)
	if err := row.Scan(&msg.ID); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (r *postgresMessageRepo) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `
		SELECT id, role, text, audio_filename, created_at
		FROM messages
		WHERE id = $1
	`

	var m models.Message

	err := r.conn.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Role,
		&m.Text,
		&m.AudioFilename,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message by id: %w", err)
	}

	return &m, nil
}

func (r *postgresMessageRepo) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
