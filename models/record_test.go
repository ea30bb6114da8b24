package models

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNormalizeRecord_FiltersUnknownFields(t *testing.T) {
	raw := map[string]any{
		"name":     "Fireball",
		"level":    3,
		"_copy":    "internal",
		"hasToken": true,
	}
	rec := NormalizeRecord(raw, []string{"name", "level", "source"})

	if rec["name"] != "Fireball" {
		t.Errorf("name = %v, want Fireball", rec["name"])
	}
	if rec["level"] != 3 {
		t.Errorf("level = %v, want 3", rec["level"])
	}
	if _, ok := rec["_copy"]; ok {
		t.Error("unknown field _copy should have been dropped")
	}
	if _, ok := rec["source"]; ok {
		t.Error("missing source should stay absent, not be defaulted")
	}
}

func TestNormalizeRecord_NilValueDropped(t *testing.T) {
	rec := NormalizeRecord(map[string]any{"name": nil}, []string{"name"})
	if _, ok := rec["name"]; ok {
		t.Error("nil value should not survive normalization")
	}
}

func TestLooksLikeEntity(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		keyFields []string
		want      bool
	}{
		{"all keys present", map[string]any{"name": "Orc", "source": "MM"}, []string{"name", "source"}, true},
		{"missing key", map[string]any{"name": "Orc"}, []string{"name", "source"}, false},
		{"empty key fields", map[string]any{"name": "Orc"}, nil, false},
		{"extra fields ok", map[string]any{"name": "Orc", "source": "MM", "cr": "1/2"}, []string{"name", "source"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeEntity(tt.raw, tt.keyFields); got != tt.want {
				t.Errorf("LooksLikeEntity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_RoundTripPreservesValuesAndOrder(t *testing.T) {
	records := []Record{
		{"name": "Feuerball", "entries": "Ein heller Blitz: 8W6 Feuerschaden против всех"},
		{"name": "ファイアボール", "level": json.Number("3")},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var back []Record
	if err := dec.Decode(&back); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(back) != len(records) {
		t.Fatalf("record count changed: got %d, want %d", len(back), len(records))
	}
	for i, rec := range records {
		for k, v := range rec {
			got := back[i][k]
			if got != v {
				t.Errorf("record %d field %q = %v, want %v", i, k, got, v)
			}
		}
	}
}

func TestTargetPresets(t *testing.T) {
	base := "https://example.test/"
	for _, target := range []Target{Spells(base), Bestiary(base)} {
		if target.PageURL == "" || target.BaseURL != base {
			t.Errorf("%s: bad URLs: page=%q base=%q", target.Name, target.PageURL, target.BaseURL)
		}
		if len(target.Fields) == 0 || len(target.CollectionGlobals) == 0 {
			t.Errorf("%s: preset missing schema or collection globals", target.Name)
		}
		if len(target.CriticalScripts) == 0 || len(target.DataEndpoints) == 0 {
			t.Errorf("%s: preset missing scripts or data endpoints", target.Name)
		}
		if target.OutputFile == "" {
			t.Errorf("%s: preset missing output file name", target.Name)
		}
	}
}
