package alloc

// Config tunes the allocator's diagnostics.
type Config struct {
	// MaxDumpRows caps the chunk rows Dump writes. Zero or less means no cap.
	MaxDumpRows int
}

// DefaultConfig stops the dump after 15 rows.
var DefaultConfig = Config{
	MaxDumpRows: 15,
}
