package database

import "fmt"

// SynchronousMode represents the available synchronous settings for SQLite
type SynchronousMode string

const (
	SynchronousOff    SynchronousMode = "OFF"
	SynchronousNormal SynchronousMode = "NORMAL"
	SynchronousFull   SynchronousMode = "FULL"
)

// JournalMode represents the journal modes the storefront uses
type JournalMode string

const (
	JournalDelete JournalMode = "DELETE"
	JournalMemory JournalMode = "MEMORY"
	JournalWAL    JournalMode = "WAL"
)

// CacheMode represents the available cache modes for SQLite
type CacheMode string

const (
	CacheShared  CacheMode = "shared"
	CachePrivate CacheMode = "private"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLiteOptions contains configuration options for SQLite connection.
// Zero values leave the SQLite default in place.
type SQLiteOptions struct {
	// Path to the SQLite database file, or MemoryPath
	Path string

	Mode        string          // ro, rw, rwc, memory
	Cache       CacheMode       // shared, private
	TxLock      string          // deferred, immediate, exclusive
	Journal     JournalMode     // journal_mode
	Synchronous SynchronousMode // synchronous
	CacheSize   int             // cache_size, KB when negative per SQLite semantics
	ForeignKeys bool            // foreign_keys
	BusyTimeout int             // busy_timeout in milliseconds
}

// IsMemory reports whether the options describe an in-memory database
func (opts SQLiteOptions) IsMemory() bool {
	return opts.Path == MemoryPath || opts.Mode == "memory"
}

// pragmas lists the PRAGMA calls run on every new connection, in order
func (opts SQLiteOptions) pragmas() []string {
	var out []string
	if opts.Journal != "" {
		out = append(out, fmt.Sprintf("journal_mode(%s)", opts.Journal))
	}
	if opts.Synchronous != "" {
		out = append(out, fmt.Sprintf("synchronous(%s)", opts.Synchronous))
	}
	if opts.CacheSize != 0 {
		out = append(out, fmt.Sprintf("cache_size(%d)", opts.CacheSize))
	}
	if opts.ForeignKeys {
		out = append(out, "foreign_keys(1)")
	}
	if opts.BusyTimeout > 0 {
		out = append(out, fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout))
	}
	return out
}

// NewDefaultOptions creates SQLiteOptions for the on-disk state file
func NewDefaultOptions(path string) SQLiteOptions {
	return SQLiteOptions{
		Path:        path,
		Mode:        "rwc",
		Cache:       CachePrivate,
		TxLock:      "immediate",
		Journal:     JournalWAL,
		Synchronous: SynchronousNormal,
		CacheSize:   2000,
		ForeignKeys: true,
		BusyTimeout: 5000,
	}
}

// NewMemoryOptions creates SQLiteOptions for a throwaway in-memory database
func NewMemoryOptions() SQLiteOptions {
	return SQLiteOptions{
		Path:        MemoryPath,
		ForeignKeys: true,
		BusyTimeout: 5000,
	}
}
