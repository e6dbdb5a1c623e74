// Package lists persists the search history and favorites lists. Each list
// is one named record in a small jar file, stored as a JSON array blob with
// a 365-day expiry, and only ever rewritten whole.
package lists

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxAge is how long a jar record stays valid.
const maxAge = 365 * 24 * time.Hour

const jarFile = "cookies.json"

// record is one named value with its expiry (unix seconds).
type record struct {
	Value   string `json:"value"`
	Expires int64  `json:"expires"`
}

// Jar is a cookie-jar style store of named string records. Writes are
// last-write-wins; there is no partial update of a record.
type Jar struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	records map[string]record
}

// OpenJar loads the jar under dir, dropping expired records. A missing or
// unreadable jar file starts empty rather than failing.
func OpenJar(dir string) (*Jar, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	j := &Jar{
		path:    filepath.Join(dir, jarFile),
		now:     time.Now,
		records: make(map[string]record),
	}

	data, err := os.ReadFile(j.path)
	if err != nil {
		return j, nil
	}

	var records map[string]record
	if err := json.Unmarshal(data, &records); err != nil {
		return j, nil
	}

	cutoff := j.now().Unix()
	for name, rec := range records {
		if rec.Expires > cutoff {
			j.records[name] = rec
		}
	}
	return j, nil
}

// Get returns the value stored under name, if present and unexpired.
func (j *Jar) Get(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rec, ok := j.records[name]
	if !ok || rec.Expires <= j.now().Unix() {
		delete(j.records, name)
		return "", false
	}
	return rec.Value, true
}

// Set stores value under name with a fresh expiry and persists the jar.
func (j *Jar) Set(name, value string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.records[name] = record{
		Value:   value,
		Expires: j.now().Add(maxAge).Unix(),
	}
	return j.flush()
}

// flush writes the jar file. Callers must hold the lock.
func (j *Jar) flush() error {
	data, err := json.Marshal(j.records)
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, data, 0644)
}
