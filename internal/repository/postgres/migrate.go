package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"casedocs/internal/migrations"
)

// RunMigrations applies the embedded goose migrations, rendering the
// {{prefix}} placeholder with the environment's table prefix first.
// Goose works over database/sql, so it opens its own short-lived
// connection beside the pgx pool.
func RunMigrations(ctx context.Context, databaseURL, tablePrefix string) error {
	rendered, err := renderMigrations(migrations.Migrations, tablePrefix)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(rendered)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetTableName(tablePrefix + "goose_db_version")

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// renderMigrations substitutes the table prefix into every embedded
// migration file and returns them as an in-memory fs.FS for goose.
func renderMigrations(src fs.FS, prefix string) (fs.FS, error) {
	out := memFS{}

	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(src, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		out[entry.Name()] = bytes.ReplaceAll(data, []byte("{{prefix}}"), []byte(prefix))
	}
	return out, nil
}

// memFS is a minimal read-only fs.FS over in-memory files, enough for
// goose's directory walk.
type memFS map[string][]byte

func (m memFS) Open(name string) (fs.File, error) {
	if name == "." {
		return &memDir{fs: m}, nil
	}
	data, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memFile{name: name, reader: bytes.NewReader(data), size: int64(len(data))}, nil
}

func (m memFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	// Stable order so goose sees migrations in sequence
	sort.Strings(names)
	entries := make([]fs.DirEntry, len(names))
	for i, n := range names {
		entries[i] = memDirEntry{name: n, size: int64(len(m[n]))}
	}
	return entries, nil
}

func (m memFS) ReadFile(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	return data, nil
}

type memFile struct {
	name   string
	reader *bytes.Reader
	size   int64
}

func (f *memFile) Stat() (fs.FileInfo, error) { return memFileInfo{name: f.name, size: f.size}, nil }
func (f *memFile) Read(p []byte) (int, error) { return f.reader.Read(p) }
func (f *memFile) Close() error               { return nil }

type memDir struct {
	fs   memFS
	read bool
}

func (d *memDir) Stat() (fs.FileInfo, error) { return memFileInfo{name: ".", dir: true}, nil }
func (d *memDir) Read([]byte) (int, error)   { return 0, fs.ErrInvalid }
func (d *memDir) Close() error               { return nil }

func (d *memDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.read {
		return nil, nil
	}
	d.read = true
	return d.fs.ReadDir(".")
}

type memDirEntry struct {
	name string
	size int64
}

func (e memDirEntry) Name() string               { return e.name }
func (e memDirEntry) IsDir() bool                { return false }
func (e memDirEntry) Type() fs.FileMode          { return 0 }
func (e memDirEntry) Info() (fs.FileInfo, error) { return memFileInfo{name: e.name, size: e.size}, nil }

type memFileInfo struct {
	name string
	size int64
	dir  bool
}

func (i memFileInfo) Name() string { return i.name }
func (i memFileInfo) Size() int64  { return i.size }
func (i memFileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir
	}
	return 0
}
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return i.dir }
func (i memFileInfo) Sys() interface{}   { return nil }
