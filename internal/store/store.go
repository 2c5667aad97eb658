package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// ErrNotFound is returned for unknown or expired import ids.
var ErrNotFound = errors.New("import not found")

// Import is a parsed export held between wizard steps.
type Import struct {
	ID        string              `json:"id"`
	Source    string              `json:"source"` // file name, or "text"
	CreatedAt time.Time           `json:"createdAt"`
	Result    *models.ParseResult `json:"-"`
}

// Imports keeps parsed exports in memory until their TTL runs out.
type Imports struct {
	cache *cache.Cache
	now   func() time.Time
}

// New returns a store whose entries expire after ttl.
func New(ttl time.Duration) *Imports {
	return &Imports{
		cache: cache.New(ttl, 2*ttl),
		now:   time.Now,
	}
}

// Put stores result under a fresh id.
func (s *Imports) Put(source string, result *models.ParseResult) Import {
	imp := Import{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: s.now().UTC(),
		Result:    result,
	}
	s.cache.SetDefault(imp.ID, imp)
	return imp
}

// Get returns the import stored under id.
func (s *Imports) Get(id string) (Import, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Import{}, ErrNotFound
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return Import{}, ErrNotFound
	}
	return v.(Import), nil
}

// Delete drops an import; unknown ids are ignored.
func (s *Imports) Delete(id string) {
	s.cache.Delete(id)
}

// Len reports how many imports are currently held.
func (s *Imports) Len() int {
	return s.cache.ItemCount()
}
