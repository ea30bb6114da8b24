// Package fallback generates the manual-extraction artifacts used when
// every automated strategy has failed: a self-contained script a human
// operator can paste into the target site's own console, plus written
// instructions. The package performs no network or browser activity.
package fallback

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/mythkeep/lorehound/models"
)

// Subdir is the fixed subpath under the output directory that receives
// the fallback artifacts.
const Subdir = "manual"

const scriptTemplate = `// Manual extraction script for the {{.Name}} page.
// Open {{.PageURL}} in a regular browser, wait for the list to finish
// loading, open the developer console (F12) and paste this whole file.
(() => {
	const sources = {{.Sources}};
	const wrappers = {{.Wrappers}};
	const fields = {{.Fields}};

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
	if (!list) {
		console.error('lorehound: no entity collection found on this page; ' +
			'make sure the list has fully loaded before running the script');
		return;
	}

	const records = list.map(e => {
		const rec = {};
		for (const f of fields) {
			if (e && e[f] !== undefined && e[f] !== null) rec[f] = e[f];
		}
		return rec;
	});

	const blob = new Blob([JSON.stringify(records, null, 2)], { type: 'application/json' });
	const a = document.createElement('a');
	a.href = URL.createObjectURL(blob);
	a.download = '{{.OutputFile}}';
	document.body.appendChild(a);
	a.click();
	a.remove();
	console.log('lorehound: downloaded ' + records.length + ' records as {{.OutputFile}}');
})();
`

const readmeTemplate = `# Manual extraction: {{.Name}}

Automated extraction failed for this run. The data can still be recovered
by hand in a couple of minutes:

1. Open {{.PageURL}} in a normal desktop browser.
2. If a cookie/consent banner appears, accept it.
3. Wait until the {{.Name}} list is fully rendered.
4. Open the developer console (F12, "Console" tab).
5. Paste the entire contents of extract.js into the console and press Enter.
6. The browser downloads {{.OutputFile}}; move it into the run's output
   directory.

The script only reads data already present in the page and triggers a
client-side download. It sends nothing anywhere.
`

// Emitter writes the manual fallback artifacts.
type Emitter struct {
	log *slog.Logger
}

// NewEmitter creates an Emitter.
func NewEmitter(log *slog.Logger) *Emitter {
	return &Emitter{log: log}
}

// Emit writes extract.js and README.md under <outputDir>/manual. Write
// failures propagate: without these artifacts a fully-failed run has
// produced nothing actionable.
func (e *Emitter) Emit(target models.Target, outputDir string) error {
	dir := filepath.Join(outputDir, Subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.NewExtractError(models.ErrCodePersist,
			"cannot create manual fallback dir", err)
	}

	data, err := templateData(target)
	if err != nil {
		return models.NewExtractError(models.ErrCodePersist,
			"cannot build fallback script data", err)
	}

	scriptPath := filepath.Join(dir, "extract.js")
	if err := renderTo(scriptPath, scriptTemplate, data); err != nil {
		return models.NewExtractError(models.ErrCodePersist,
			"cannot write manual extraction script", err)
	}

	readmePath := filepath.Join(dir, "README.md")
	if err := renderTo(readmePath, readmeTemplate, data); err != nil {
		return models.NewExtractError(models.ErrCodePersist,
			"cannot write manual extraction instructions", err)
	}

	e.log.Info("manual fallback artifacts written",
		"script", scriptPath, "instructions", readmePath)
	return nil
}

// templateData prepares the per-target values, with the JS array literals
// JSON-encoded so the generated script is valid regardless of content.
func templateData(target models.Target) (map[string]string, error) {
	sources, err := json.Marshal(target.CollectionGlobals)
	if err != nil {
		return nil, err
	}
	wrappers, err := json.Marshal(target.WrapperKeys)
	if err != nil {
		return nil, err
	}
	fields, err := json.Marshal(target.Fields)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Name":       target.Name,
		"PageURL":    target.PageURL,
		"OutputFile": target.OutputFile,
		"Sources":    string(sources),
		"Wrappers":   string(wrappers),
		"Fields":     string(fields),
	}, nil
}

// renderTo renders a template straight into a file.
func renderTo(path, tmpl string, data map[string]string) error {
	t, err := template.New(filepath.Base(path)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := t.Execute(f, data); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
