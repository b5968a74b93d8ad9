package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	sqlx.BindDriver("libsql", sqlx.QUESTION)
}

const linkColumns = `id, title, original_url, custom_url, short_url, qr, user_id, created_at`

type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository opens dbURL and brings the schema up to date.
// libsql:// and wss:// URLs go to Turso, anything else to a local file.
func NewSQLiteRepository(ctx context.Context, dbURL string) (*SQLiteRepository, error) {
	driverName := DriverFor(dbURL)

	db, err := sqlx.Open(driverName, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driverName == "sqlite" {
		// One writer; also keeps shared in-memory databases alive.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db.DB); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func DriverFor(dbURL string) string {
	if strings.HasPrefix(dbURL, "libsql://") || strings.HasPrefix(dbURL, "wss://") {
		return "libsql"
	}
	return "sqlite"
}

// DB exposes the handle for adapters that share the database.
func (r *SQLiteRepository) DB() *sqlx.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO urls (title, original_url, custom_url, short_url, qr, user_id, created_at)
			  VALUES (:title, :original_url, :custom_url, :short_url, :qr, :user_id, :created_at)`

	res, err := r.db.NamedExecContext(ctx, query, link)
	if err != nil {
		return fmt.Errorf("insert url: %w", classify(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) ListLinksByOwner(ctx context.Context, userID string) ([]domain.Link, error) {
	links := []domain.Link{}
	query := `SELECT ` + linkColumns + ` FROM urls WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &links, query, userID); err != nil {
		return nil, fmt.Errorf("list urls: %w", err)
	}
	return links, nil
}

func (r *SQLiteRepository) GetOwnedLink(ctx context.Context, id int64, userID string) (*domain.Link, error) {
	var link domain.Link
	query := `SELECT ` + linkColumns + ` FROM urls WHERE id = ? AND user_id = ?`
	err := r.db.GetContext(ctx, &link, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get url %d: %w", id, err)
	}
	return &link, nil
}

// FindLinksByCode returns up to limit links whose short or custom code is code.
func (r *SQLiteRepository) FindLinksByCode(ctx context.Context, code string, limit int) ([]domain.Link, error) {
	links := []domain.Link{}
	query := `SELECT ` + linkColumns + ` FROM urls WHERE short_url = ? OR custom_url = ? ORDER BY id LIMIT ?`
	if err := r.db.SelectContext(ctx, &links, query, code, code, limit); err != nil {
		return nil, fmt.Errorf("find url by code: %w", err)
	}
	return links, nil
}

func (r *SQLiteRepository) DeleteLink(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM urls WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete url %d: %w", id, err)
	}
	return res.RowsAffected()
}

// Dump returns every link regardless of owner, oldest first.
func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	links := []domain.Link{}
	if err := r.db.SelectContext(ctx, &links, `SELECT `+linkColumns+` FROM urls ORDER BY id`); err != nil {
		return nil, fmt.Errorf("dump urls: %w", err)
	}
	return links, nil
}

func (r *SQLiteRepository) InsertClick(ctx context.Context, click *domain.Click) error {
	if click.CreatedAt.IsZero() {
		click.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO clicks (url_id, city, country, device, created_at)
			  VALUES (:url_id, :city, :country, :device, :created_at)`

	res, err := r.db.NamedExecContext(ctx, query, click)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	click.ID = id
	return nil
}

func (r *SQLiteRepository) ListClicks(ctx context.Context, urlIDs []int64) ([]domain.Click, error) {
	clicks := []domain.Click{}
	if len(urlIDs) == 0 {
		return clicks, nil
	}

	query, args, err := sqlx.In(`SELECT id, url_id, city, country, device, created_at
		FROM clicks WHERE url_id IN (?) ORDER BY created_at, id`, urlIDs)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &clicks, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	return clicks, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO users (id, email, name, password_hash, created_at)
			  VALUES (:id, :email, :name, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("insert user: %w", classify(err))
	}
	return nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) getUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// classify marks uniqueness violations so callers can tell them apart.
func classify(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

var (
	_ ports.LinkRepository  = (*SQLiteRepository)(nil)
	_ ports.ClickRepository = (*SQLiteRepository)(nil)
	_ ports.UserRepository  = (*SQLiteRepository)(nil)
)
