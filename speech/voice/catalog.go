// Package voice provides the static voice catalog for the speech gateway.
// The catalog answers voice-identity questions without any I/O; all lookups
// are deterministic and side-effect-free.
package voice

import (
	"errors"
	"fmt"
)

// Gender identifies a voice gender.
type Gender string

// Supported genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Locale identifies a target-language regional variant. Only the two
// Portuguese variants are supported in this domain.
type Locale string

// Supported locales.
const (
	LocalePortugal Locale = "pt-PT"
	LocaleBrazil   Locale = "pt-BR"
)

// Engine identifies which backend can serve a voice.
type Engine string

// Known backends.
const (
	// EngineNeural is the networked high-fidelity synthesis service.
	EngineNeural Engine = "neural"
	// EngineHost is the machine's built-in synthesis capability.
	EngineHost Engine = "host"
)

// Descriptor is an immutable catalog entry identifying a synthesizable voice.
type Descriptor struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Gender Gender `yaml:"gender"`
	Locale Locale `yaml:"locale"`
	Engine Engine `yaml:"engine"`
}

// Overview bundles the derived grouping views over the registry. Every view
// is built from the same underlying entries, so no view can disagree with
// another.
type Overview struct {
	All         []Descriptor
	ByLocale    map[Locale][]Descriptor
	ByGender    map[Gender][]Descriptor
	Recommended []Descriptor
	DefaultID   string
}

// Catalog is a fixed registry of voices, populated at construction and never
// mutated. Declaration order is preserved and used as the priority order for
// recommendations.
type Catalog struct {
	entries     []Descriptor
	byID        map[string]int
	defaultID   string
	recommended []string
}

var (
	// ErrDuplicateVoice reports two entries sharing an id.
	ErrDuplicateVoice = errors.New("duplicate voice id")
	// ErrUnknownDefault reports a default id that resolves to no entry.
	ErrUnknownDefault = errors.New("default voice not in catalog")
	// ErrUnsupportedLocale reports an entry outside the supported locales.
	ErrUnsupportedLocale = errors.New("unsupported locale")
)

// New builds a catalog from the given entries. The default id must resolve
// to one of them, and every entry must carry a supported locale.
func New(defaultID string, entries ...Descriptor) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Descriptor, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)

	for i, d := range c.entries {
		if d.Locale != LocalePortugal && d.Locale != LocaleBrazil {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedLocale, d.Locale, d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVoice, d.ID)
		}
		c.byID[d.ID] = i
	}

	if _, ok := c.byID[defaultID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefault, defaultID)
	}
	c.defaultID = defaultID

	return c, nil
}

// edgeVoices is the registry of Edge neural voices the learning app ships
// with. Declaration order doubles as recommendation priority.
var edgeVoices = []Descriptor{
	{ID: "pt-PT-RaquelNeural", Name: "Raquel", Gender: GenderFemale, Locale: LocalePortugal, Engine: EngineNeural},
	{ID: "pt-PT-DuarteNeural", Name: "Duarte", Gender: GenderMale, Locale: LocalePortugal, Engine: EngineNeural},
	{ID: "pt-PT-FernandaNeural", Name: "Fernanda", Gender: GenderFemale, Locale: LocalePortugal, Engine: EngineNeural},
	{ID: "pt-BR-FranciscaNeural", Name: "Francisca", Gender: GenderFemale, Locale: LocaleBrazil, Engine: EngineNeural},
	{ID: "pt-BR-AntonioNeural", Name: "Antonio", Gender: GenderMale, Locale: LocaleBrazil, Engine: EngineNeural},
	{ID: "pt-BR-ThalitaNeural", Name: "Thalita", Gender: GenderFemale, Locale: LocaleBrazil, Engine: EngineNeural},
}

// DefaultVoiceID is the catalog-designated default voice.
const DefaultVoiceID = "pt-PT-RaquelNeural"

// Default returns the built-in Edge voice catalog.
func Default() *Catalog {
	c, err := New(DefaultVoiceID, edgeVoices...)
	if err != nil {
		// The built-in registry is validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	c.recommended = []string{
		"pt-PT-RaquelNeural",
		"pt-PT-DuarteNeural",
		"pt-BR-FranciscaNeural",
		"pt-BR-AntonioNeural",
	}
	return c
}

// Lookup returns the descriptor for id. Unknown ids report ok=false and
// never panic.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return c.entries[i], true
}

// DefaultVoice returns the designated default entry.
func (c *Catalog) DefaultVoice() Descriptor {
	d, _ := c.Lookup(c.defaultID)
	return d
}

// DefaultID returns the id of the designated default entry.
func (c *Catalog) DefaultID() string {
	return c.defaultID
}

// Voices returns the grouped views over the registry. The slices are fresh
// copies; callers cannot mutate the catalog through them.
func (c *Catalog) Voices() Overview {
	o := Overview{
		All:       make([]Descriptor, len(c.entries)),
		ByLocale:  make(map[Locale][]Descriptor, 2),
		ByGender:  make(map[Gender][]Descriptor, 2),
		DefaultID: c.defaultID,
	}
	copy(o.All, c.entries)

	for _, d := range c.entries {
		o.ByLocale[d.Locale] = append(o.ByLocale[d.Locale], d)
		o.ByGender[d.Gender] = append(o.ByGender[d.Gender], d)
	}

	for _, id := range c.recommended {
		if d, ok := c.Lookup(id); ok {
			o.Recommended = append(o.Recommended, d)
		}
	}

	return o
}

// Recommended picks a voice for the given gender and locale. Selection runs
// three deterministic tiers: first entry matching both gender and locale in
// declaration order, then first entry matching locale alone, then the
// catalog default. Repeated calls with identical inputs always return the
// identical voice.
func (c *Catalog) Recommended(gender Gender, locale Locale) (Descriptor, bool) {
	for _, d := range c.entries {
		if d.Gender == gender && d.Locale == locale {
			return d, true
		}
	}
	for _, d := range c.entries {
		if d.Locale == locale {
			return d, true
		}
	}
	return c.Lookup(c.defaultID)
}
