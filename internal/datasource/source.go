package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceType identifies the type of data source.
type SourceType string

const (
	// SourceTypeSQLite is a crew SQLite database (org.db)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSON is a JSON org snapshot file
	SourceTypeJSON SourceType = "json"
)

// Priority values for source types (higher = more authoritative).
const (
	PrioritySQLite = 100
	PriorityJSON   = 50
)

// DataSource represents a potential source of org data.
type DataSource struct {
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority breaks ties when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), status)
}

// DiscoveryOptions configures source discovery behavior.
type DiscoveryOptions struct {
	// DataDir is the directory to scan. CREW_DATA_DIR overrides when empty.
	DataDir string
	// ValidateAfterDiscovery opens each discovered source to check it
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Logger receives discovery log messages
	Logger func(msg string)
}

// DiscoverSources finds all potential data sources in the data directory,
// freshest first.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = os.Getenv("CREW_DATA_DIR")
	}
	if dataDir == "" {
		return nil, fmt.Errorf("no data directory given")
	}

	opts.Logger(fmt.Sprintf("discovering sources in: %s", dataDir))

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		var typ SourceType
		var priority int
		switch {
		case strings.HasSuffix(name, ".db"):
			typ, priority = SourceTypeSQLite, PrioritySQLite
		case strings.HasSuffix(name, ".json"):
			typ, priority = SourceTypeJSON, PriorityJSON
		default:
			continue
		}

		// Skip backups and merge artifacts
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		src := DataSource{
			Type:     typ,
			Path:     filepath.Join(dataDir, name),
			Priority: priority,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		}
		sources = append(sources, src)
		opts.Logger(fmt.Sprintf("found %s: %s (mod=%s)", typ, src.Path,
			info.ModTime().Format(time.RFC3339)))
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil {
				opts.Logger(fmt.Sprintf("validation failed for %s: %v", sources[i].Path, err))
			}
		}
		if !opts.IncludeInvalid {
			var valid []DataSource
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	opts.Logger(fmt.Sprintf("discovered %d sources", len(sources)))

	return sources, nil
}

// ValidateSource opens the source and checks it serves the org reads.
// Sets Valid and ValidationError on the source.
func ValidateSource(src *DataSource) error {
	store, err := OpenSource(*src)
	if err != nil {
		src.Valid = false
		src.ValidationError = err.Error()
		return err
	}
	defer store.Close()

	// A source with no users cannot answer any read meaningfully.
	users, err := store.OrgUsers(context.Background())
	if err != nil {
		src.Valid = false
		src.ValidationError = err.Error()
		return err
	}
	if len(users) == 0 {
		src.Valid = false
		src.ValidationError = "no users"
		return fmt.Errorf("source %s has no users", src.Path)
	}

	src.Valid = true
	src.ValidationError = ""
	return nil
}

// SelectBestSource picks the freshest valid source; sources must be
// sorted as DiscoverSources returns them.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, fmt.Errorf("no valid data source")
}

// OpenSource opens a store for the given source.
func OpenSource(src DataSource) (Store, error) {
	switch src.Type {
	case SourceTypeSQLite:
		return NewSQLiteStore(src.Path)
	case SourceTypeJSON:
		return NewJSONStore(src.Path)
	default:
		return nil, fmt.Errorf("unknown source type: %s", src.Type)
	}
}

// Open opens a store directly from a file path, inferring the backend
// from the extension. Used when the config names an explicit data file.
func Open(path string) (Store, error) {
	switch {
	case strings.HasSuffix(path, ".db"):
		return NewSQLiteStore(path)
	case strings.HasSuffix(path, ".json"):
		return NewJSONStore(path)
	default:
		return nil, fmt.Errorf("unsupported data file: %s", path)
	}
}
