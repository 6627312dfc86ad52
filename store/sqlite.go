package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SqliteStore keeps todos in a private in-memory SQLite database.
// The pool is pinned to one connection because every new connection to
// ":memory:" opens a fresh, empty database. Data is lost on Close or restart.
//
// Tables:
//
//	todos(seq, id, text, completed)  seq AUTOINCREMENT defines display order
type SqliteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewSqliteStore() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS todos (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		text TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create todos table: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) Add(text string) (Todo, error) {
	text, err := NormalizeText(text)
	if err != nil {
		return Todo{}, err
	}
	t := Todo{ID: uuid.NewString(), Text: text}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(
		"INSERT INTO todos (id, text, completed) VALUES (?, ?, 0)",
		t.ID, t.Text,
	); err != nil {
		return Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return t, nil
}

func (s *SqliteStore) Toggle(id string) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("UPDATE todos SET completed = NOT completed WHERE id = ?", id)
	if err != nil {
		return Todo{}, fmt.Errorf("toggle todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Todo{}, &NotFoundError{ID: id}
	}
	var t Todo
	err = s.db.QueryRow(
		"SELECT id, text, completed FROM todos WHERE id = ?", id,
	).Scan(&t.ID, &t.Text, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Todo{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return Todo{}, fmt.Errorf("read toggled todo: %w", err)
	}
	return t, nil
}

func (s *SqliteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

func (s *SqliteStore) List() ([]Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query("SELECT id, text, completed FROM todos ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()
	result := []Todo{}
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
