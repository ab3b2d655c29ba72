package database

import (
	"net/url"
	"strings"
)

// buildConnectionString generates a modernc SQLite DSN from options.
// Every PRAGMA travels as _pragma so each pooled connection is configured the same way.
func (opts *SQLiteOptions) buildConnectionString() string {
	params := url.Values{}

	for _, pragma := range opts.pragmas() {
		params.Add("_pragma", pragma)
	}
	if opts.TxLock != "" {
		params.Set("_txlock", opts.TxLock)
	}

	// URI parameters understood by sqlite3_open_v2
	if opts.Cache != "" {
		params.Set("cache", string(opts.Cache))
	}
	if opts.Mode != "" && !opts.IsMemory() {
		params.Set("mode", opts.Mode)
	}

	connStr := opts.Path
	if !strings.HasPrefix(connStr, "file:") {
		connStr = "file:" + connStr
	}
	if encoded := params.Encode(); encoded != "" {
		connStr += "?" + encoded
	}
	return connStr
}
