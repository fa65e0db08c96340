// Package history keeps the bounded list of completed measurements and
// persists it between runs.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"drape-meter/internal/drape"
)

// DefaultCapacity is the number of measurements retained before the oldest
// entries are evicted.
const DefaultCapacity = 20

// Measurement is one successful pipeline run. Immutable after creation.
type Measurement struct {
	Timestamp      time.Time      `json:"timestamp"`
	AreaCm2        float64        `json:"area_cm2"`
	CoefficientPct float64        `json:"drape_coefficient_pct"`
	Category       drape.Category `json:"category"`
}

// History is an ordered, capacity-bounded measurement list, most recent
// first. It is mutated only by the orchestrator after a successful run or
// by explicit operator deletion.
type History struct {
	capacity int
	entries  []Measurement
}

// New creates an empty history. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Add prepends a measurement, evicting the oldest entry when full.
func (h *History) Add(m Measurement) {
	h.entries = append([]Measurement{m}, h.entries...)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[:h.capacity]
	}
}

// Delete removes the entry at index i. Out-of-range indexes are ignored.
func (h *History) Delete(i int) {
	if i < 0 || i >= len(h.entries) {
		return
	}
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
}

// Clear removes all entries.
func (h *History) Clear() {
	h.entries = nil
}

// Len returns the number of stored measurements.
func (h *History) Len() int {
	return len(h.entries)
}

// Items returns a copy of the stored measurements, most recent first.
func (h *History) Items() []Measurement {
	out := make([]Measurement, len(h.entries))
	copy(out, h.entries)
	return out
}

// Load reads a history file. A missing file yields an empty history.
func Load(path string, capacity int) (*History, error) {
	h := New(capacity)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []Measurement
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}

	// Re-apply the cap in case the file was written with a larger one.
	if len(entries) > h.capacity {
		entries = entries[:h.capacity]
	}
	h.entries = entries
	return h, nil
}

// Save writes the history to a file, creating parent directories as needed.
func (h *History) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create history dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
