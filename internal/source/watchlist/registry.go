// Package watchlist implements a file-backed market source: a hand-curated
// list of tickers read through viper, validated against a JSON schema and
// hot-reloaded when the file changes.
package watchlist

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desprit/bicklebow/internal/logger"
	"github.com/desprit/bicklebow/internal/market"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
)

// Entry is one watchlist row. Ticker is mandatory; everything else feeds the
// catalog record created during backfill.
type Entry struct {
	Ticker   string `mapstructure:"ticker" json:"ticker"`
	Label    string `mapstructure:"label" json:"label"`
	Figi     string `mapstructure:"figi" json:"figi"`
	Risk     int    `mapstructure:"risk" json:"risk"`
	Priority int    `mapstructure:"priority" json:"priority"`
	Category string `mapstructure:"category" json:"category"`
}

type fileConfig struct {
	Watchlist []Entry `mapstructure:"watchlist"`
}

// Snapshot is an immutable view of the loaded entries.
type Snapshot struct {
	LoadedAt time.Time
	Entries  []Entry
}

const schemaJSON = `{
  "type": "object",
  "required": ["watchlist"],
  "properties": {
    "watchlist": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["ticker"],
        "properties": {
          "ticker": {"type": "string", "minLength": 1},
          "label": {"type": "string"},
          "figi": {"type": "string"},
          "risk": {"type": "integer", "minimum": 0},
          "priority": {"type": "integer", "minimum": 0},
          "category": {
            "type": "string",
            "enum": ["", "Etfs", "Healthcare", "BasicMaterials", "IndustrialGoods",
                     "It", "ConsumerGoods", "CopyTrade", "Transport", "Financial"]
          }
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("watchlist.schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("watchlist.schema.json")
	})
	return schemaCompiled, schemaErr
}

// Registry owns the watchlist file: it loads it once, validates it and keeps
// the snapshot fresh through the file watcher.
type Registry struct {
	path string
	v    *viper.Viper

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewRegistry reads the watchlist at path and starts watching it for changes.
// A reload that fails validation keeps the previous snapshot.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("watchlist registry requires a path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read watchlist failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("watchlist reload failed: %v", err)
		}
	})
	v.WatchConfig()
	return r, nil
}

func (r *Registry) reload() error {
	if err := r.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read watchlist failed: %w", err)
	}
	settings := r.v.AllSettings()
	if err := validateSettings(settings); err != nil {
		return fmt.Errorf("watchlist %s: %w", r.path, err)
	}
	var cfg fileConfig
	if err := r.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode watchlist failed: %w", err)
	}
	entries := make([]Entry, 0, len(cfg.Watchlist))
	seen := make(map[string]bool)
	for _, e := range cfg.Watchlist {
		e.Ticker = strings.TrimSpace(e.Ticker)
		if e.Ticker == "" || seen[e.Ticker] {
			continue
		}
		seen[e.Ticker] = true
		entries = append(entries, e)
	}
	r.mu.Lock()
	r.snapshot = Snapshot{LoadedAt: time.Now(), Entries: entries}
	r.mu.Unlock()
	logger.Infof("watchlist: loaded %d entries from %s", len(entries), r.path)
	return nil
}

func validateSettings(settings map[string]interface{}) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	// The schema library validates json.Unmarshal output, so round-trip the
	// viper settings through JSON first.
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Snapshot returns the current entries.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := Snapshot{LoadedAt: r.snapshot.LoadedAt, Entries: make([]Entry, len(r.snapshot.Entries))}
	copy(out.Entries, r.snapshot.Entries)
	return out
}

// Markets renders the entries as full catalog records for backfill.
func (r *Registry) Markets() []market.Market {
	snap := r.Snapshot()
	out := make([]market.Market, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		category, err := market.ParseCategory(e.Category)
		if err != nil {
			category = ""
		}
		out = append(out, market.Market{
			Ticker:   e.Ticker,
			Label:    e.Label,
			Figi:     e.Figi,
			Risk:     e.Risk,
			Priority: e.Priority,
			Category: category,
		})
	}
	return out
}
