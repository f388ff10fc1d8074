package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  role TEXT NOT NULL,
  text TEXT,
  audio_filename TEXT,
  created_at TEXT NOT NULL
);`

	sqliteSelectAll = `
SELECT id, role, text, audio_filename, created_at
FROM messages
ORDER BY id ASC;`

	sqliteSelectByID = `
SELECT id, role, text, audio_filename, created_at
FROM messages
WHERE id = ?;`

	sqliteInsert = `
INSERT INTO messages (role, text, audio_filename, created_at)
VALUES (?, ?, ?, ?);`

	sqliteDeleteByID = `
DELETE FROM messages
WHERE id = ?;`
)

type SQLiteMessageStore struct {
	db *sql.DB
}

// OpenSQLiteMessageStore opens (creating if needed) the database file and
// its messages table.
func OpenSQLiteMessageStore(ctx context.Context, path string) (*SQLiteMessageStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create messages table: %w", err)
	}

	return &SQLiteMessageStore{db: db}, nil
}

func (s *SQLiteMessageStore) Acquire(ctx context.Context) (ports.MessageHandle, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sqlite conn: %w", err)
	}
	return &sqliteMessageRepo{conn: conn}, nil
}

func (s *SQLiteMessageStore) Close() {
	_ = s.db.Close()
}

type sqliteMessageRepo struct {
	conn *sql.Conn
}

func (r *sqliteMessageRepo) Release() {
	_ = r.conn.Close()
}

func (r *sqliteMessageRepo) ListMessages(ctx context.Context) ([]models.Message, error) {
	rows, err := r.conn.QueryContext(ctx, sqliteSelectAll)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.Message, 0)
	for rows.Next() {
		m, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return out, nil
}

func (r *sqliteMessageRepo) InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if !msg.Role.Valid() {
		return nil, models.ErrInvalidRole
	}

	msg.CreatedAt = models.NewCreatedAt(time.Now())

	res, err := r.conn.ExecContext(ctx, sqliteInsert,
		string(msg.Role), nullString(msg.Text), nullString(msg.AudioFilename), msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert message: last id: %w", err)
	}

	msg.ID = id
	return msg, nil
}

func (r *sqliteMessageRepo) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	m, err := scanSQLiteMessage(r.conn.QueryRowContext(ctx, sqliteSelectByID, id))
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	default:
		return nil, fmt.Errorf("get message by id: %w", err)
	}
}

func (r *sqliteMessageRepo) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.ExecContext(ctx, sqliteDeleteByID, id)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete message: rows affected: %w", err)
	}

	return rows > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMessage(row rowScanner) (*models.Message, error) {
	var (
		m     models.Message
		role  string
		text  sql.NullString
		audio sql.NullString
	)
	if err := row.Scan(&m.ID, &role, &text, &audio, &m.CreatedAt); err != nil {
		return nil, err
	}

	m.Role = models.Role(role)
	if text.Valid {
		m.Text = &text.String
	}
	if audio.Valid {
		m.AudioFilename = &audio.String
	}
	return &m, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
