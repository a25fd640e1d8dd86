package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is the last list page fetched for a resource and query.
type Snapshot struct {
	Resource      string          `json:"resource"`
	QueryKey      string          `json:"query_key"`
	Page          int             `json:"page"`
	TotalPages    int             `json:"total_pages"`
	TotalElements int64           `json:"total_elements"`
	Payload       json.RawMessage `json:"payload"`
	FetchedAt     string          `json:"fetched_at"`
}

type CachedNotification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Link      string `json:"link"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
	Source    string `json:"source"`
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}

func OpenCacheDB() (*sql.DB, error) {
	if _, err := ensureConfigDir(); err != nil {
		return nil, err
	}
	path, err := CachePath()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := ensureCacheSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureCacheSchema(db *sql.DB) error {
	createSnapshots := `
CREATE TABLE IF NOT EXISTS snapshots (
  resource TEXT NOT NULL,
  query_key TEXT NOT NULL,
  page INTEGER,
  total_pages INTEGER,
  total_elements INTEGER,
  payload TEXT,
  fetched_at TEXT,
  PRIMARY KEY (resource, query_key)
);`
	if _, err := db.Exec(createSnapshots); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}

	createNotifications := `
CREATE TABLE IF NOT EXISTS notifications (
  id INTEGER PRIMARY KEY,
  type TEXT,
  message TEXT,
  link TEXT,
  is_read INTEGER DEFAULT 0,
  created_at TEXT
);`
	if _, err := db.Exec(createNotifications); err != nil {
		return fmt.Errorf("create notifications table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);"); err != nil {
		return fmt.Errorf("create notifications index: %w", err)
	}

	if err := ensureColumns(db, "notifications", []string{"source"}); err != nil {
		return err
	}
	return nil
}

func ensureColumns(db *sql.DB, table string, columns []string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return fmt.Errorf("inspect %s table: %w", table, err)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s columns: %w", table, err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s columns: %w", table, err)
	}

	for _, column := range columns {
		if _, ok := existing[column]; ok {
			continue
		}
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT;", table, column))
		if err != nil {
			return fmt.Errorf("add %s column %s: %w", table, column, err)
		}
	}
	return nil
}

func SaveSnapshot(db *sql.DB, snap Snapshot) error {
	query := `
INSERT OR REPLACE INTO snapshots (
  resource, query_key, page, total_pages, total_elements, payload, fetched_at
) VALUES (?, ?, ?, ?, ?, ?, ?);`

	_, err := db.Exec(
		query,
		snap.Resource,
		snap.QueryKey,
		snap.Page,
		snap.TotalPages,
		snap.TotalElements,
		string(snap.Payload),
		snap.FetchedAt,
	)
	return err
}

func LoadSnapshot(db *sql.DB, resource, queryKey string) (Snapshot, bool, error) {
	row := db.QueryRow(`
SELECT resource, query_key, page, total_pages, total_elements, payload, fetched_at
FROM snapshots WHERE resource = ? AND query_key = ?`, resource, queryKey)

	var snap Snapshot
	var payload string
	if err := row.Scan(&snap.Resource, &snap.QueryKey, &snap.Page, &snap.TotalPages, &snap.TotalElements, &payload, &snap.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	snap.Payload = json.RawMessage(payload)
	return snap, true, nil
}

func AddNotificationIfNotExists(db *sql.DB, n CachedNotification) (bool, error) {
	query := `
INSERT OR IGNORE INTO notifications (
  id, type, message, link, is_read, created_at, source
) VALUES (?, ?, ?, ?, ?, ?, ?);`

	res, err := db.Exec(query, n.ID, n.Type, n.Message, n.Link, boolToInt(n.IsRead), n.CreatedAt, n.Source)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func MarkNotificationRead(db *sql.DB, id int64) (bool, error) {
	res, err := db.Exec("UPDATE notifications SET is_read = 1 WHERE id = ? AND is_read = 0", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func ListNotifications(db *sql.DB, filter NotificationFilter) ([]CachedNotification, error) {
	base := `
SELECT id, type, message, link, is_read, created_at, source
FROM notifications`

	conds := []string{}
	args := []any{}
	if filter.UnreadOnly {
		conds = append(conds, "is_read = 0")
	}

	query := base
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []CachedNotification{}
	for rows.Next() {
		var n CachedNotification
		var link sql.NullString
		var source sql.NullString
		var isRead int
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &link, &isRead, &n.CreatedAt, &source); err != nil {
			return nil, err
		}
		if link.Valid {
			n.Link = link.String
		}
		if source.Valid {
			n.Source = source.String
		}
		n.IsRead = isRead != 0
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func ClearCache(db *sql.DB) error {
	if _, err := db.Exec("DELETE FROM snapshots"); err != nil {
		return err
	}
	_, err := db.Exec("DELETE FROM notifications")
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
