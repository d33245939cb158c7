package store

import "log"

// Options configures backend selection.
type Options struct {
	// SQLitePath locates the persistent database file.
	SQLitePath string

	// SessionDir holds the session store file; empty means the temp dir.
	SessionDir string

	// QuotaBytes caps total stored value bytes; <= 0 means unlimited.
	QuotaBytes int
}

const probeKey = "__storage_probe__"

// Select picks the storage backend for the rest of the process: durable
// SQLite, then the session file store, then plain memory. Each candidate
// must pass a trivial write+delete probe. Fallback selections log a
// one-time warning about their persistence guarantees.
func Select(opts Options) Backend {
	if sqlite, err := NewSQLiteBackend(opts.SQLitePath, opts.QuotaBytes); err == nil {
		if probe(sqlite) == nil {
			return sqlite
		}
		sqlite.Close()
		log.Printf("WARN: persistent storage failed its probe; trying session storage")
	} else {
		log.Printf("WARN: persistent storage unavailable (%v); trying session storage", err)
	}

	if file, err := NewFileBackend(opts.SessionDir, opts.QuotaBytes); err == nil {
		if probe(file) == nil {
			log.Printf("WARN: using session storage; data may not survive across sessions")
			return file
		}
	}

	log.Printf("WARN: using in-memory storage; data is lost when the service stops")
	return NewMemoryBackend(opts.QuotaBytes)
}

func probe(b Backend) error {
	if err := b.Set(probeKey, "1"); err != nil {
		return err
	}
	return b.Delete(probeKey)
}
