package cli

import (
	"io"
	"os"
	"path/filepath"
)

// Store kinds accepted by Options.Store.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// DefaultStoreDir is where the file store keeps snapshots.
var DefaultStoreDir = filepath.Join(".formstate", "snapshots")

// Options holds the settings shared by every command.
type Options struct {
	Store         string
	StoreDir      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
	// EncryptionKey is a hex-encoded 32-byte key; when set, snapshots are sealed.
	EncryptionKey string
	// MaskFields are regular expressions; matching fields are blanked before saving.
	MaskFields []string
	Debug      bool
	LogJSON    bool
}

// IO bundles the streams a command talks to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Interactive is true when In and Out are a terminal.
	Interactive bool
}

// StdIO returns the process streams.
func StdIO(interactive bool) IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr, Interactive: interactive}
}
