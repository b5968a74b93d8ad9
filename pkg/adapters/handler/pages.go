package handler

import (
	"html/template"
	"net/http"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!doctype html><html><head><meta charset="utf-8"><title>{{.}}</title></head><body>{{end}}
{{define "foot"}}</body></html>{{end}}

{{define "pending"}}{{template "head" "Signing in"}}
<meta http-equiv="refresh" content="2">
<p>Signing you in&hellip;</p>
<p><a href="/auth">Back to sign in</a></p>
{{template "foot"}}{{end}}

{{define "auth"}}{{template "head" "Sign in"}}
{{with .Error}}<p role="alert">{{.}}</p>{{end}}
<p><a href="/auth/google/login?next={{.Next}}">Continue with Google</a></p>
<form method="post" action="/auth/login">
<input type="hidden" name="next" value="{{.Next}}">
<input name="email" type="email" placeholder="Email">
<input name="password" type="password" placeholder="Password">
<button>Login</button>
</form>
<form method="post" action="/auth/signup">
<input type="hidden" name="next" value="{{.Next}}">
<input name="name" placeholder="Name">
<input name="email" type="email" placeholder="Email">
<input name="password" type="password" placeholder="Password">
<button>Create account</button>
</form>
{{template "foot"}}{{end}}

{{define "dashboard"}}{{template "head" "My Links"}}
<h1>My Links</h1>
<p>{{len .Links}} links, {{.TotalClicks}} clicks</p>
{{if .Draft.Open}}<dialog open>{{else}}<dialog>{{end}}
<p>Create new link</p>
<input name="title" placeholder="Short Link's Title">
<input name="longUrl" placeholder="Enter your Loooong URL" value="{{.Draft.Form.LongURL}}">
<input name="customUrl" placeholder="Custom Link (optional)">
</dialog>
<ul>{{range .Links}}
<li><a href="/link/{{.ID}}">{{.Title}}</a> <a href="/{{.ShortURL}}">/{{.ShortURL}}</a> {{.OriginalURL}}</li>
{{end}}</ul>
{{template "foot"}}{{end}}

{{define "link"}}{{template "head" .Link.Title}}
<h1>{{.Link.Title}}</h1>
<img src="{{.Link.QR}}" alt="QR code" width="250" height="250">
<p><a href="/{{.Link.ShortURL}}">/{{.Link.ShortURL}}</a>{{with .Link.CustomURL}} <a href="/{{.}}">/{{.}}</a>{{end}}</p>
<p>{{.Link.OriginalURL}}</p>
<p>Total clicks: {{.Stats.TotalClicks}}</p>
<ul>{{range $k, $v := .Stats.ByDevice}}<li>{{$k}}: {{$v}}</li>{{end}}</ul>
<ul>{{range $k, $v := .Stats.ByCity}}<li>{{$k}}: {{$v}}</li>{{end}}</ul>
{{template "foot"}}{{end}}
`))

type authPage struct {
	Next  string
	Error string
}

type dashboardPage struct {
	Links       []domain.Link
	TotalClicks int
	Draft       domain.LinkDraft
}

type linkPage struct {
	Link  *domain.Link
	Stats domain.Stats
}

func renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = pages.ExecuteTemplate(w, name, data)
}

func renderPending(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, http.StatusOK, "pending", nil)
}
