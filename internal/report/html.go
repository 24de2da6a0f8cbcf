package report

import (
	"html/template"
	"io"
	"time"

	"github.com/devshield/devshield/internal/types"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>DevShield report</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: .4rem; text-align: left; vertical-align: top; }
.block { color: #b00020; font-weight: bold; }
.warn { color: #a66300; }
.allow { color: #1b5e20; }
pre { white-space: pre-wrap; margin: 0; }
</style>
</head>
<body>
<h1>DevShield report</h1>
<p>Generated {{.Generated}}. Files scanned: {{.FilesScanned}}. Findings: {{len .Results}}.</p>
{{if .Results}}<table>
<tr><th>Action</th><th>Score</th><th>Type</th><th>Location</th><th>Value</th><th>Explanation</th></tr>
{{range .Results}}<tr>
<td class="{{.Decision.Action}}">{{.Decision.Action}}</td>
<td>{{.Decision.RiskScore}}</td>
<td>{{.Finding.SecretType}}</td>
<td>{{.Finding.Path}}:{{.Finding.Line}}</td>
<td><code>{{.Finding.Redacted}}</code></td>
<td><pre>{{.Decision.Explanation}}</pre></td>
</tr>
{{end}}</table>{{else}}<p>No secrets found.</p>{{end}}
</body>
</html>
`))

// WriteHTML renders a standalone HTML report.
func WriteHTML(w io.Writer, results []types.Result, filesScanned int) error {
	return htmlTemplate.Execute(w, struct {
		Generated    string
		FilesScanned int
		Results      []types.Result
	}{
		Generated:    time.Now().UTC().Format(time.RFC3339),
		FilesScanned: filesScanned,
		Results:      results,
	})
}
