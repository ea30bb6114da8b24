package models

// Target describes one extraction target: where the data lives, what the
// page must have loaded before extraction is safe, and the fixed Record
// schema the raw entities are mapped onto.
type Target struct {
	// Name identifies the target in logs and CLI output (e.g. "spells").
	Name string

	// PageURL is the rendered list page to drive with a browser.
	PageURL string

	// BaseURL is the site root, used to resolve direct data endpoints.
	BaseURL string

	// CriticalScripts are script src substrings that must be attached
	// before the page's data globals can exist.
	CriticalScripts []string

	// Globals are JS global names whose presence signals readiness.
	Globals []string

	// CollectionGlobals are candidate global names holding the raw entity
	// collection, checked in order.
	CollectionGlobals []string

	// Fields is the fixed Record schema. Only these fields survive
	// normalization; output field order is their sorted order.
	Fields []string

	// KeyFields duck-type an object as an entity (dict-shaped payloads).
	KeyFields []string

	// WrapperKeys are object keys that may wrap the entity list in a
	// direct-fetch payload, checked in order.
	WrapperKeys []string

	// ListSelector / RowSelector / RowLinkSelector drive the DOM fallback
	// tier when the collection globals are absent.
	ListSelector    string
	RowSelector     string
	RowLinkSelector string

	// DOMColumns names, in visual order, the list columns after the entity
	// name. Used to label cell values in the DOM fallback tier.
	DOMColumns []string

	// DataEndpoints are likely raw-data paths relative to BaseURL, tried
	// in order by the direct-fetch strategy.
	DataEndpoints []string

	// OutputFile is the persisted data file name for this target.
	OutputFile string
}

// Spells returns the spell list target preset.
func Spells(baseURL string) Target {
	return Target{
		Name:    "spells",
		PageURL: baseURL + "spells.html",
		BaseURL: baseURL,
		CriticalScripts: []string{
			"js/parser.js",
			"js/utils.js",
			"lib/jquery.js",
			"js/utils-ui.js",
			"js/spells.js",
		},
		Globals:           []string{"jQuery", "Parser", "Utils"},
		CollectionGlobals: []string{"spellsdata", "spells", "spellList"},
		Fields: []string{
			"name", "source", "level", "school", "time", "range",
			"components", "duration", "entries", "entriesHigherLevel",
			"classes", "meta", "page", "srd",
		},
		KeyFields:       []string{"name", "source"},
		WrapperKeys:     []string{"spell", "spells", "items", "data"},
		ListSelector:    "div#list.list",
		RowSelector:     "div.lst__row",
		RowLinkSelector: "a.lst__row-inner",
		DOMColumns:      []string{"level", "time", "school", "range", "source"},
		DataEndpoints: []string{
			"data/spells/index.json",
			"data/spells/spells-phb.json",
			"data/spells.json",
		},
		OutputFile: "spells.json",
	}
}

// Bestiary returns the monster list target preset.
func Bestiary(baseURL string) Target {
	return Target{
		Name:    "bestiary",
		PageURL: baseURL + "bestiary.html",
		BaseURL: baseURL,
		CriticalScripts: []string{
			"js/parser.js",
			"js/utils.js",
			"lib/jquery.js",
			"js/utils-ui.js",
			"js/bestiary.js",
		},
		Globals:           []string{"jQuery", "Parser", "Utils"},
		CollectionGlobals: []string{"monsters", "monsterList"},
		Fields: []string{
			"name", "source", "type", "size", "alignment", "ac", "hp",
			"speed", "str", "dex", "con", "int", "wis", "cha", "save",
			"skill", "vulnerable", "resist", "immune", "conditionImmune",
			"senses", "languages", "cr", "trait", "action", "reaction",
			"legendary", "legendaryGroup", "variant", "tokenURL", "page",
		},
		KeyFields:       []string{"name", "source"},
		WrapperKeys:     []string{"monster", "monsters", "items", "data"},
		ListSelector:    "div#list.list",
		RowSelector:     "div.lst__row",
		RowLinkSelector: "a.lst__row-inner",
		DOMColumns:      []string{"type", "cr", "source"},
		DataEndpoints: []string{
			"data/bestiary/index.json",
			"data/bestiary/bestiary-mm.json",
			"data/bestiary.json",
		},
		OutputFile: "monsters.json",
	}
}
