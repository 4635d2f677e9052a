// Package devotional looks up the daily devotional entry in a precomputed
// date-keyed table. The table is a deploy-time fixed JSON asset, so it is
// loaded once per process and held as immutable shared state.
package devotional

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	appLog "inkdash/internal/log"
	"inkdash/internal/model"
)

// dateLayout is the table's date key format (DD.MM.YYYY).
const dateLayout = "02.01.2006"

// Table is an immutable in-memory devotional table indexed by date.
type Table struct {
	byDate map[string]model.DevotionalEntry
}

// LoadTable reads and indexes the JSON table at path. Entries without a
// Datum field are skipped.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devotional: read table: %w", err)
	}

	var entries []model.DevotionalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("devotional: parse table: %w", err)
	}

	byDate := make(map[string]model.DevotionalEntry, len(entries))
	for _, e := range entries {
		if e.Datum == "" {
			continue
		}
		byDate[e.Datum] = e
	}

	appLog.Info("devotional table loaded", "path", path, "entries", len(byDate))
	return &Table{byDate: byDate}, nil
}

// ForDate returns the entry whose date exactly matches the local calendar
// date of now, or nil when the table has no entry for that day. A miss is
// not an error; the devotional panel is simply omitted.
func (t *Table) ForDate(now time.Time) *model.DevotionalEntry {
	if t == nil {
		return nil
	}
	key := now.Format(dateLayout)
	e, ok := t.byDate[key]
	if !ok {
		return nil
	}
	return &e
}
