package models

// Record is one normalized extracted entity (a spell, a monster) as a
// field-name-to-value mapping. Values are carried through as raw JSON values;
// a missing field is legal and is simply absent from the map. Records have no
// identity beyond their field content.
type Record map[string]any

// NormalizeRecord filters a raw entity object down to the recognized schema
// fields. Unknown fields are dropped, absent fields stay absent.
func NormalizeRecord(raw map[string]any, fields []string) Record {
	rec := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := raw[f]; ok && v != nil {
			rec[f] = v
		}
	}
	return rec
}

// LooksLikeEntity reports whether a raw object carries enough of the key
// fields to be treated as one entity. Used to duck-type dictionary-shaped
// payloads whose values are individual entities.
func LooksLikeEntity(raw map[string]any, keyFields []string) bool {
	for _, f := range keyFields {
		if _, ok := raw[f]; !ok {
			return false
		}
	}
	return len(keyFields) > 0
}
