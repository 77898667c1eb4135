package registry

import (
	"fmt"
	"sync/atomic"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// Catalog is an immutable, indexed set of scenes and decks.
type Catalog struct {
	scenes   []types.Scene
	decks    []types.Deck
	sceneIdx map[string]int
	deckIdx  map[string]int
}

// NewCatalog indexes scenes and decks. Ids must be non-empty and unique per kind.
func NewCatalog(scenes []types.Scene, decks []types.Deck) (*Catalog, error) {
	c := &Catalog{
		scenes:   append([]types.Scene(nil), scenes...),
		decks:    append([]types.Deck(nil), decks...),
		sceneIdx: make(map[string]int, len(scenes)),
		deckIdx:  make(map[string]int, len(decks)),
	}
	for i, s := range c.scenes {
		if s.ID == "" {
			return nil, fmt.Errorf("scene %d: empty id", i)
		}
		if _, dup := c.sceneIdx[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scene id %q", s.ID)
		}
		c.sceneIdx[s.ID] = i
	}
	for i, d := range c.decks {
		if d.ID == "" {
			return nil, fmt.Errorf("deck %d: empty id", i)
		}
		if _, dup := c.deckIdx[d.ID]; dup {
			return nil, fmt.Errorf("duplicate deck id %q", d.ID)
		}
		if ps := d.Performance.PreloadStrategy; ps != "" && !ps.Valid() {
			return nil, fmt.Errorf("deck %q: unknown preload_strategy %q", d.ID, ps)
		}
		c.deckIdx[d.ID] = i
	}
	return c, nil
}

func (c *Catalog) Scene(id string) (types.Scene, bool) {
	i, ok := c.sceneIdx[id]
	if !ok {
		return types.Scene{}, false
	}
	return c.scenes[i], true
}

func (c *Catalog) Deck(id string) (types.Deck, bool) {
	i, ok := c.deckIdx[id]
	if !ok {
		return types.Deck{}, false
	}
	return c.decks[i], true
}

// Scenes returns all scenes in load order.
func (c *Catalog) Scenes() []types.Scene { return append([]types.Scene(nil), c.scenes...) }

// Decks returns all decks in load order.
func (c *Catalog) Decks() []types.Deck { return append([]types.Deck(nil), c.decks...) }

// ScenesForDeck returns the scenes belonging to deck id, in load order.
func (c *Catalog) ScenesForDeck(id string) []types.Scene {
	var out []types.Scene
	for _, s := range c.scenes {
		if s.InDeck(id) {
			out = append(out, s)
		}
	}
	return out
}

// Store holds the current catalog and allows it to be swapped atomically.
type Store struct {
	cur atomic.Pointer[Catalog]
}

var emptyCatalog, _ = NewCatalog(nil, nil)

// NewStore returns a store holding c (or an empty catalog when c is nil).
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.Set(c)
	return s
}

// Current returns the catalog in effect. It is never nil.
func (s *Store) Current() *Catalog {
	if c := s.cur.Load(); c != nil {
		return c
	}
	return emptyCatalog
}

func (s *Store) Set(c *Catalog) {
	if c == nil {
		c = emptyCatalog
	}
	s.cur.Store(c)
}

// Scene looks up id in the current catalog.
func (s *Store) Scene(id string) (types.Scene, bool) { return s.Current().Scene(id) }

// Deck looks up id in the current catalog.
func (s *Store) Deck(id string) (types.Deck, bool) { return s.Current().Deck(id) }

// Scenes returns the scenes of the current catalog.
func (s *Store) Scenes() []types.Scene { return s.Current().Scenes() }
