package routes

import (
	"html/template"
	"strings"
)

const (
	messageSuccess = "success"
	messageFailure = "failure"
	messageInfo    = "info"
)

// messageClass picks the colour of a status message from its wording.
func messageClass(msg string) string {
	switch {
	case strings.Contains(msg, "successfully"):
		return messageSuccess
	case strings.Contains(msg, "Error"), strings.Contains(msg, "error"):
		return messageFailure
	default:
		return messageInfo
	}
}

// imageSource lets inline data:image URIs through; everything else gets the
// regular URL sanitising.
func imageSource(src string) interface{} {
	if strings.HasPrefix(src, "data:image/") {
		return template.URL(src)
	}
	return src
}

var templates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"messageClass": messageClass,
	"imageSource":  imageSource,
}).Parse(layoutHTML + homeHTML + predictionHTML + uploadHTML + retrainingHTML + visualizationsHTML + notFoundHTML))

const layoutHTML = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if .Refresh}}<meta http-equiv="refresh" content="1">{{end}}
<title>{{.Title}} | Pathway Finder</title>
<link rel="icon" href="data:,">
<style>
body { margin: 0; font-family: system-ui, sans-serif; background: #f9fafb; color: #111827; }
nav { background: #2563eb; padding: 1rem; }
nav ul { display: flex; justify-content: center; gap: 1.5rem; list-style: none; margin: 0; padding: 0; }
nav a { color: #fff; text-decoration: none; }
nav a:hover, nav a.active { text-decoration: underline; }
main { max-width: 28rem; margin: 5rem auto; padding: 1.5rem; }
main.wide { max-width: 50rem; }
label { display: block; font-size: .875rem; margin: 1rem 0 .25rem; }
input, select { width: 100%; padding: .5rem; border: 1px solid #d1d5db; border-radius: .25rem; box-sizing: border-box; }
button, .button { display: inline-block; width: 100%; margin-top: 1rem; padding: .75rem 2rem; background: #1e3a8a; color: #fff; border: 0; border-radius: .375rem; text-align: center; text-decoration: none; cursor: pointer; box-sizing: border-box; }
button[disabled] { opacity: .7; cursor: not-allowed; }
.card { margin-top: 1.5rem; padding: 1rem; background: #fff; border: 1px solid #e5e7eb; border-radius: .25rem; }
.row { display: flex; justify-content: space-between; margin: .5rem 0; }
.center { text-align: center; }
.muted { color: #4b5563; font-size: .875rem; }
.message { margin-top: 1rem; text-align: center; }
.message.success { color: #16a34a; }
.message.failure { color: #dc2626; }
.message.info { color: #2563eb; }
.banner { padding: .75rem; text-align: center; background: #fee2e2; color: #991b1b; }
.progress { margin-top: 1.5rem; height: .625rem; background: #e5e7eb; border-radius: 9999px; }
.progress .bar { height: 100%; background: #2563eb; border-radius: 9999px; }
.choices { display: flex; flex-wrap: wrap; gap: .5rem; }
.choice { padding: .5rem 1rem; border-radius: .375rem; background: #e5e7eb; color: #1f2937; text-decoration: none; }
.choice.active { background: #1e3a8a; color: #fff; }
.chart img { max-width: 100%; height: auto; border: 1px solid #e5e7eb; border-radius: .375rem; }
</style>
</head>
<body>
<nav><ul>
{{range .Nav}}<li><a href="{{.Path}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a></li>
{{end}}</ul></nav>
{{if not .Configured}}<div class="banner">The career service is not configured. Set CAREER_API_BASE_URL to enable requests.</div>{{end}}
<main{{if .Wide}} class="wide"{{end}}>
{{end}}

{{define "footer"}}
</main>
</body>
</html>
{{end}}
`

const homeHTML = `
{{define "home"}}{{template "header" .}}
<section class="center">
<h1>DISCOVER YOUR PASSION</h1>
<p class="muted">Unlock your future with Pathway Finder: personalized career recommendations tailored to your interests, strengths and personality leveraging the power of machine learning.</p>
<a class="button" href="/prediction">Start Predicting</a>
</section>
{{template "footer" .}}{{end}}
`

const predictionHTML = `
{{define "prediction"}}{{template "header" .}}{{with .Body}}
<form method="post" action="/prediction">
<label for="Education">Education Level</label>
<select id="Education" name="Education" required>
<option value="">Select Education Level</option>
{{range .Education}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}</select>
{{range .Inputs}}<label for="{{.Name}}">{{.Label}}</label>
<input type="text" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}" placeholder="{{.Placeholder}}" required>
{{end}}
<button type="submit"{{if .View.Submitting}} disabled{{end}}>{{.View.ButtonLabel}}</button>
</form>
{{if .View.Notice}}<div class="card message failure">{{.View.Notice}}</div>{{end}}
{{if .View.Error}}<div class="card message failure">{{.View.Error}}</div>{{end}}
{{with .View.Result}}<div class="card message success">
<h2>Prediction Results:</h2>
<p>Recommended Career: {{.RecommendedCareer}}</p>
</div>{{end}}
{{end}}{{template "footer" .}}{{end}}
`

const uploadHTML = `
{{define "upload"}}{{template "header" .}}{{with .Body}}
<form method="post" action="/upload" enctype="multipart/form-data">
<label for="file-upload">Enter CSV file for prediction</label>
<input id="file-upload" type="file" name="file" accept=".csv">
<button type="submit"{{if .View.Uploading}} disabled{{end}}>{{.View.ButtonLabel}}</button>
</form>
{{if .View.Message}}<p class="message {{messageClass .View.Message}}">{{.View.Message}}</p>{{end}}
{{if .View.FileName}}<p class="muted">Selected file: {{.View.FileName}}</p>{{end}}
{{if .View.OfferRetraining}}<a class="button" href="/retraining">Continue to Retraining</a>{{end}}
{{end}}{{template "footer" .}}{{end}}
`

const retrainingHTML = `
{{define "retraining"}}{{template "header" .}}{{with .Body}}
{{if not .View.HasFile}}
<div class="center">
<p class="message failure">{{.View.Message}}</p>
<a class="button" href="/upload">Go to Upload Page</a>
</div>
{{else}}
<div class="card">
<h2>File Ready for Retraining:</h2>
<p>{{.View.FileName}}</p>
</div>
<form method="post" action="/retraining">
<button type="submit"{{if .View.Retraining}} disabled{{end}}>{{.View.ButtonLabel}}</button>
</form>
{{if .View.Retraining}}
<div class="progress"><div class="bar" style="width: {{.View.Progress}}%"></div></div>
<p class="muted center">{{.View.Progress}}% complete</p>
{{end}}
{{if .View.Message}}<p class="message {{messageClass .View.Message}}">{{.View.Message}}</p>{{end}}
{{with .View.MetricRows}}<div class="card">
<h2>Retraining Results</h2>
{{range .}}<div class="row"><span>{{.Label}}:</span><span>{{.Value}}</span></div>
{{end}}</div>{{end}}
{{end}}
{{end}}{{template "footer" .}}{{end}}
`

const visualizationsHTML = `
{{define "visualizations"}}{{template "header" .}}{{with .Body}}
<h2>Select Parameter to Visualize:</h2>
<div class="choices">
{{$selected := .View.Selected}}{{range .View.Parameters}}<a class="choice{{if eq .ID $selected}} active{{end}}" href="/visualizations?parameter={{.ID}}">{{.Label}}</a>
{{end}}</div>
{{if .Notice}}<p class="message failure">{{.Notice}}</p>{{end}}
<div class="card">
{{if not .View.Selected}}<p class="muted center">Select a parameter from above to view visualizations</p>{{end}}
{{if .View.Loading}}<p class="muted center">Loading visualization...</p>{{end}}
{{if .View.Error}}<p class="message failure">{{.View.Error}}</p>{{end}}
{{$label := .View.SelectedLabel}}{{with .View.Charts}}
<h3>{{$label}} Visualizations</h3>
<div class="chart">
<h4>Count Plot</h4>
<img src="{{imageSource .CountPlot}}" alt="{{$label}} count plot">
</div>
<div class="chart">
<h4>Stacked Bar Plot</h4>
<img src="{{imageSource .BarPlot}}" alt="{{$label}} bar visualization">
</div>
{{end}}
</div>
{{end}}{{template "footer" .}}{{end}}
`

const notFoundHTML = `
{{define "not_found"}}{{template "header" .}}
<h1 class="center">404 - Page Not Found</h1>
{{template "footer" .}}{{end}}
`
