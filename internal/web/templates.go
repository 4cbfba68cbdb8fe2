package web

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
label { display: block; margin-top: 0.8rem; }
input[type=text] { width: 100%; }
table { border-collapse: collapse; margin: 1rem 0; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
.error { color: #a00; }
.answer { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Mit dieser App ist es möglich, Fragen über die gespeicherten Dokumente mittels KI beantworten zu lassen.
Zur Identifizierung geeigneter Dokumente werden aus den Dokumenten sowie aus der Anfrage per KI Schlagworte generiert.</p>

<form method="post" action="/ask">
<h2>Anfrage</h2>
<label>Gib hier deine Anfrage ein
<input type="text" name="prompt" value="{{.Form.Prompt}}"></label>
<label>Temperatur (zwischen 0 und 1, höhere Werte für kreativere Antworten)
<input type="number" name="temperature" min="0" max="1" step="0.01" value="{{.Form.Temperature}}"></label>
<label>Maximale Anzahl an Antwort-Tokens
<input type="number" name="max_tokens" min="100" max="10000" value="{{.Form.MaxTokens}}"></label>
<label><input type="checkbox" name="use_rag" value="on"{{if .Form.UseRAG}} checked{{end}}>
Ergebnis mittels Retrieval Augmented Generation (RAG) verbessern?</label>
<label>Anzahl zu verwendender Dokumente (wenn RAG genutzt wird)
<input type="number" name="num_docs" min="0" max="20" value="{{.Form.NumDocs}}"></label>
<p><button type="submit">Absenden</button></p>
</form>

{{with .Error}}<p class="error">{{.}}</p>{{end}}

{{if .Result}}
{{if .Form.UseRAG}}
<h2>Relevante Dokumente</h2>
<p>Die folgenden Dokumente werden bei der Erstellung der Antwort berücksichtigt, von relevant zu weniger relevant sortiert.</p>
<table>
<tr><th>Titel des Dokuments</th><th>Veröffentlichungsdatum</th><th>Link</th></tr>
{{range .Result.Documents}}<tr><td>{{.Title}}</td><td>{{.Date}}</td><td><a href="{{.URL}}" target="_blank" rel="noopener">Link</a></td></tr>
{{end}}</table>
<h2>RAG Ausgabe</h2>
{{else}}
<h2>Standard-Ausgabe</h2>
{{end}}
<div class="answer">{{.Result.Answer}}</div>
{{end}}
</body>
</html>
`))
