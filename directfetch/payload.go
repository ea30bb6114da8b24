package directfetch

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/mythkeep/lorehound/models"
)

// DecodePayload turns a fetched endpoint body into Records. The body may
// be raw JSON or an HTML page wrapping the JSON in a preformatted block
// (some hosts serve data files through a viewer page). Three payload
// shapes normalize to the same sequence:
//
//   - a direct list of entities
//   - an object with a known wrapper key holding the list
//   - a dictionary whose values individually look like entities
func DecodePayload(body []byte, target models.Target) ([]models.Record, error) {
	if looksLikeHTML(body) {
		inner, err := unwrapPre(body)
		if err != nil {
			return nil, fmt.Errorf("html wrapper without data block: %w", err)
		}
		body = inner
	}

	v, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return normalizeShape(v, target), nil
}

// looksLikeHTML sniffs the body with the HTML tokenizer: a document whose
// first meaningful token is a start tag is treated as HTML, anything else
// (JSON starts with '{' or '[') is not.
func looksLikeHTML(body []byte) bool {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	switch tokenizer.Next() {
	case html.StartTagToken, html.DoctypeToken:
		return true
	case html.TextToken:
		// Leading whitespace before a tag still counts as HTML.
		if len(bytes.TrimSpace(tokenizer.Text())) == 0 {
			next := tokenizer.Next()
			return next == html.StartTagToken || next == html.DoctypeToken
		}
	}
	return false
}

// unwrapPre extracts the text of the first <pre> block in an HTML page.
func unwrapPre(body []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	pre := doc.Find("pre").First()
	if pre.Length() == 0 {
		return nil, fmt.Errorf("no <pre> element found")
	}
	return []byte(pre.Text()), nil
}

// normalizeShape maps any of the accepted payload shapes onto Records.
func normalizeShape(v any, target models.Target) []models.Record {
	switch data := v.(type) {
	case []any:
		return entityList(data, target)
	case map[string]any:
		// Wrapper object with a known key holding the list.
		for _, key := range target.WrapperKeys {
			if list, ok := data[key].([]any); ok {
				if records := entityList(list, target); len(records) > 0 {
					return records
				}
			}
		}
		// Dictionary whose values are themselves entities.
		return entityDict(data, target)
	}
	return nil
}

// entityList normalizes a raw list, keeping only items that duck-type as
// entities.
func entityList(list []any, target models.Target) []models.Record {
	records := make([]models.Record, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok || !models.LooksLikeEntity(obj, target.KeyFields) {
			continue
		}
		records = append(records, models.NormalizeRecord(obj, target.Fields))
	}
	return records
}

// entityDict normalizes a dictionary payload. Keys carry no data beyond
// grouping, so only values that look like entities survive. Iteration
// order of the dict is not defined; the sequence is ordered by key to
// keep runs reproducible.
func entityDict(data map[string]any, target models.Target) []models.Record {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var records []models.Record
	for _, k := range keys {
		obj, ok := data[k].(map[string]any)
		if !ok || !models.LooksLikeEntity(obj, target.KeyFields) {
			continue
		}
		records = append(records, models.NormalizeRecord(obj, target.Fields))
	}
	return records
}
