package browser

import (
	"log/slog"

	"github.com/mythkeep/lorehound/models"
)

// primaryJS reads the first populated collection global (directly or under
// a known wrapper key) and maps each raw entity onto the fixed schema.
// Collection names, wrapper keys and fields arrive as arguments so the
// script text itself never changes.
const primaryJS = `(sources, wrappers, fields) => {
	let list = null;
	for (const name of sources) {
		const v = window[name];
		if (Array.isArray(v) && v.length) { list = v; break; }
		if (v && typeof v === 'object') {
			for (const k of wrappers) {
				if (Array.isArray(v[k]) && v[k].length) { list = v[k]; break; }
			}
			if (list) break;
		}
	}
	if (!list) return [];
	return list.map(e => {
		const rec = {};
		for (const f of fields) {
			if (e && e[f] !== undefined && e[f] !== null) rec[f] = e[f];
		}
		return rec;
	});
}`

// domJS scrapes the rendered list rows. A row missing a sub-element keeps
// its place with an empty value; rows are never skipped for partial data.
const domJS = `(listSel, rowSel, linkSel, columns) => {
	const root = document.querySelector(listSel) || document;
	const rows = root.querySelectorAll(rowSel);
	const out = [];
	for (const row of rows) {
		const rec = {};
		const link = row.querySelector(linkSel);
		rec.name = link ? link.textContent.trim() : '';
		rec.url = (link && link.href) ? link.href : '';
		const cells = row.querySelectorAll('[class*="col-"]');
		let ci = 0;
		for (let i = 0; i < cells.length && ci < columns.length; i++) {
			if (link && cells[i].contains(link)) continue;
			rec[columns[ci]] = cells[i].textContent.trim();
			ci++;
		}
		for (; ci < columns.length; ci++) rec[columns[ci]] = '';
		out.push(rec);
	}
	return out;
}`

// probeJS reports what data-bearing state the page actually has: the type
// and size of each alternate global plus the count of embedded JSON script
// blocks. Diagnostic only.
const probeJS = `(names) => {
	const report = { globals: {}, jsonScripts: 0 };
	for (const n of names) {
		const v = window[n];
		if (v === undefined) report.globals[n] = 'undefined';
		else if (Array.isArray(v)) report.globals[n] = 'array:' + v.length;
		else report.globals[n] = typeof v;
	}
	report.jsonScripts = document.querySelectorAll('script[type="application/json"]').length;
	return report;
}`

// alternate globals probed when both extraction tiers come back empty.
var probeGlobals = []string{
	"spellsdata", "spells", "monsters", "list", "DataUtil", "ExcludeUtil",
}

// extractRecords pulls the sequence of Records currently on the page.
// Tier 1 reads the known collection globals; tier 2 scrapes the rendered
// list DOM. When both yield nothing, a diagnostic probe is logged to help
// operators spot site-structure drift. Errors never propagate; a failed
// extraction is an empty sequence so the pipeline can try the next
// strategy.
func extractRecords(page evaluator, target models.Target, log *slog.Logger) []models.Record {
	records := evalRecords(page, log, primaryJS,
		target.CollectionGlobals, target.WrapperKeys, target.Fields)
	if len(records) > 0 {
		log.Info("extracted records from page globals", "count", len(records))
		return records
	}

	log.Warn("collection globals empty, falling back to DOM scrape")
	records = evalRecords(page, log, domJS,
		target.ListSelector, target.RowSelector, target.RowLinkSelector, target.DOMColumns)
	if len(records) > 0 {
		log.Info("extracted records from rendered list", "count", len(records))
		return records
	}

	probePageState(page, log)
	return nil
}

// evalRecords runs one extraction script and converts its result.
func evalRecords(page evaluator, log *slog.Logger, js string, args ...any) []models.Record {
	res, err := page.Eval(js, args...)
	if err != nil {
		log.Warn("in-page extraction failed", "error", err)
		return nil
	}
	raw, ok := res.Value.Val().([]any)
	if !ok {
		return nil
	}
	return recordsFromRaw(raw)
}

// recordsFromRaw converts the evaluated JS value into Records, dropping
// anything that is not an object.
func recordsFromRaw(raw []any) []models.Record {
	records := make([]models.Record, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rec := make(models.Record, len(obj))
		for k, v := range obj {
			rec[k] = v
		}
		records = append(records, rec)
	}
	return records
}

// probePageState logs what the page actually holds. Best-effort.
func probePageState(page evaluator, log *slog.Logger) {
	res, err := page.Eval(probeJS, probeGlobals)
	if err != nil {
		log.Debug("page state probe failed", "error", err)
		return
	}
	log.Warn("no records found on page", "state", res.Value.JSON("", ""))
}
