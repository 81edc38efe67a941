package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hightense/internal/core/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const tasksFileName = "tasks.db"

// ErrTaskNotFound indicates no task has the requested identifier.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore keeps tasks in a SQLite database.
type TaskStore struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// OpenTaskStore creates or opens the task database in dir.
func OpenTaskStore(dir string) (*TaskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create task directory: %w", err)
	}
	dbPath := filepath.Join(dir, tasksFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open task database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &TaskStore{db: db, dbPath: dbPath, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize task schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (store *TaskStore) Close() error {
	return store.db.Close()
}

// Path returns the database file path.
func (store *TaskStore) Path() string {
	return store.dbPath
}

func (store *TaskStore) initSchema() error {
	_, err := store.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			date_unix   INTEGER NOT NULL,
			is_complete INTEGER NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date_unix, created_at);
	`)
	return err
}

// CreateTask stores a new incomplete task.
func (store *TaskStore) CreateTask(ctx context.Context, name string, date time.Time) (model.Task, error) {
	task := model.Task{
		ID:   uuid.NewString(),
		Name: name,
		Date: date,
	}
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO tasks (id, name, date_unix, is_complete, created_at) VALUES (?, ?, ?, 0, ?)`,
		task.ID, task.Name, date.UnixNano(), store.now().UnixNano())
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// GetTask loads a single task.
func (store *TaskStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := store.db.QueryRowContext(ctx,
		`SELECT id, name, date_unix, is_complete FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListTasksOrderedByDate returns every task, earliest date first.
func (store *TaskStore) ListTasksOrderedByDate(ctx context.Context) ([]model.Task, error) {
	rows, err := store.db.QueryContext(ctx,
		`SELECT id, name, date_unix, is_complete FROM tasks ORDER BY date_unix ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies the non-nil fields to a task.
func (store *TaskStore) UpdateTask(ctx context.Context, id string, fields model.TaskFields) (model.Task, error) {
	task, err := store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if fields.Name != nil {
		task.Name = *fields.Name
	}
	if fields.Date != nil {
		task.Date = *fields.Date
	}
	if fields.IsComplete != nil {
		task.IsComplete = *fields.IsComplete
	}

	_, err = store.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, date_unix = ?, is_complete = ? WHERE id = ?`,
		task.Name, task.Date.UnixNano(), boolToInt(task.IsComplete), task.ID)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// SetComplete sets the completion flag of a task.
func (store *TaskStore) SetComplete(ctx context.Context, id string, complete bool) error {
	result, err := store.db.ExecContext(ctx,
		`UPDATE tasks SET is_complete = ? WHERE id = ?`, boolToInt(complete), id)
	if err != nil {
		return fmt.Errorf("set task complete: %w", err)
	}
	return requireAffected(result)
}

// DeleteTask removes a task.
func (store *TaskStore) DeleteTask(ctx context.Context, id string) error {
	result, err := store.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		task     model.Task
		dateUnix int64
		complete int
	)
	if err := row.Scan(&task.ID, &task.Name, &dateUnix, &complete); err != nil {
		return model.Task{}, err
	}
	task.Date = time.Unix(0, dateUnix)
	task.IsComplete = complete != 0
	return task, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
