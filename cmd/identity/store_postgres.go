package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// Design notes:
//   - The pgx pool is owned by the caller; Close does NOT close it.
//   - Schema/table identifiers are validated and quoted to avoid SQL
//     injection via identifiers.
//   - The users table carries a unique index on username, so the
//     registration existence-check-then-insert pair is atomic at the
//     database: the second concurrent insert surfaces as ErrConflict.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "globchat").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}

	st := &PostgresStore{pool: pool, schema: "globchat"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id UserID) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at
		   FROM `+s.table("users")+`
		  WHERE id = $1`,
		int64(id),
	)
	return scanUser(row)
}

func (s *PostgresStore) FindUserByUsername(ctx context.Context, username string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at
		   FROM `+s.table("users")+`
		  WHERE username = $1`,
		username,
	)
	return scanUser(row)
}

func (s *PostgresStore) InsertUser(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table("users")+` (id, username, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		int64(u.ID), u.Username, u.PasswordHash, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *PostgresStore) FindChannelByID(ctx context.Context, id ChannelID) (Channel, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, creator_id, created_at
		   FROM `+s.table("channels")+`
		  WHERE id = $1`,
		int64(id),
	)

	var c Channel
	if err := row.Scan(&c.ID, &c.Name, &c.CreatorID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Channel{}, ErrNotFound
		}
		return Channel{}, err
	}
	return c, nil
}

func (s *PostgresStore) InsertChannel(ctx context.Context, c Channel) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table("channels")+` (id, name, creator_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		int64(c.ID), c.Name, int64(c.CreatorID), c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *PostgresStore) FindMessages(ctx context.Context, q MessagesQuery) ([]Message, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	sql := `SELECT id, channel_id, author_id, contents, created_at
	          FROM ` + s.table("messages") + `
	         WHERE channel_id = $1 AND created_at >= $2`
	args := []any{int64(q.Channel), q.From}

	if q.To != nil {
		sql += ` AND created_at <= $3 ORDER BY id ASC LIMIT $4`
		args = append(args, *q.To, limit)
	} else {
		sql += ` ORDER BY id ASC LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.AuthorID, &m.Contents, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertMessage(ctx context.Context, m Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table("messages")+` (id, channel_id, author_id, contents, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		int64(m.ID), int64(m.ChannelID), int64(m.AuthorID), m.Contents, m.CreatedAt,
	)
	return err
}

// Close is a no-op: the pool is owned by the caller.
func (s *PostgresStore) Close(_ context.Context) error { return nil }

func (s *PostgresStore) table(name string) string {
	return `"` + s.schema + `"."` + name + `"`
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
