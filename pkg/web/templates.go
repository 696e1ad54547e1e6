package web

import (
	"html/template"
	"net/http"

	"github.com/smckee/nagmail/pkg/logger"
)

var tmpl = template.Must(template.New("pages").Parse(pagesHTML))

func render(w http.ResponseWriter, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

const pagesHTML = `
{{define "head"}}<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}} - nagmail</title>
<style>
body{font-family:sans-serif;max-width:640px;margin:2em auto;padding:0 1em;color:#222}
nav a{margin-right:1em}
.notice{background:#fff6d6;border:1px solid #e0c86e;padding:.6em 1em;margin:1em 0}
.error{color:#a00}
.due{color:#a00;font-weight:bold}
table{border-collapse:collapse;width:100%}
td,th{text-align:left;padding:.3em .6em;border-bottom:1px solid #ddd}
label{display:block;margin-top:.8em}
</style></head><body>
<nav><a href="/landing">nagmail</a>{{if .User}}<a href="/profile">Profile</a><a href="/logout">Log out</a>{{else}}<a href="/register">Register</a><a href="/login">Log in</a>{{end}}</nav>
{{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
{{end}}

{{define "foot"}}</body></html>{{end}}

{{define "landing"}}{{template "head" .}}
<h1>Never forget a recurring chore</h1>
<p>nagmail emails you when a task comes due. Mark it done from the
email, pick the next date, repeat. No password, just your inbox.</p>
<p><a href="/register">Sign up with your email</a></p>
{{template "foot" .}}{{end}}

{{define "register"}}{{template "head" .}}
<h1>Register</h1>
<form method="POST" action="/register">
<label>Email <input type="email" name="email" value="{{.Email}}" required></label>
{{if .EmailError}}<p class="error">{{.EmailError}}</p>{{end}}
<label>Language <select name="language">{{range .Languages}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<label>Timezone <select name="timezone">{{range .Zones}}<option value="{{.Name}}">{{.Name}} ({{.Offset}})</option>{{end}}</select></label>
<p><button type="submit">Register</button></p>
</form>
{{template "foot" .}}{{end}}

{{define "login"}}{{template "head" .}}
<h1>Log in</h1>
<p>Enter your email and we will send you a login link.</p>
<form method="POST" action="/login">
<label>Email <input type="email" name="email" value="{{.Email}}" required></label>
<input type="hidden" name="path" value="{{.Path}}">
<p><button type="submit">Send login link</button></p>
</form>
{{template "foot" .}}{{end}}

{{define "confirm"}}{{template "head" .}}
<h1>Check your inbox</h1>
<p>If this address is registered with us, an email with a login link
is on its way.</p>
{{template "foot" .}}{{end}}

{{define "profile"}}{{template "head" .}}
<h1>Your tasks</h1>
{{if .Tasks}}<table>
<tr><th>Task</th><th>Every</th><th>Due</th><th></th></tr>
{{range .Tasks}}<tr>
<td><a href="/task/{{.ID}}">{{.Name}}</a></td>
<td>{{.IntervalDays}} days</td>
<td{{if .IsDue}} class="due"{{end}}>{{.DueLabel}}</td>
<td><a href="/ack/{{.ID}}">done</a>
<form method="POST" action="/delete/{{.ID}}" style="display:inline"><button type="submit">delete</button></form></td>
</tr>{{end}}
</table>{{else}}<p>No tasks yet.</p>{{end}}
<p><a href="/task/new">Add a task</a></p>
{{template "foot" .}}{{end}}

{{define "task_form"}}{{template "head" .}}
<h1>{{.Title}}</h1>
<form method="POST" action="/task/{{.TaskID}}">
<label>Name <input name="name" value="{{.Name}}"></label>
{{if .Errors.name}}<p class="error">{{.Errors.name}}</p>{{end}}
<label>Description <input name="description" value="{{.Description}}"></label>
<label>Repeat every (days) <input name="interval" value="{{.Interval}}"></label>
{{if .Errors.interval}}<p class="error">{{.Errors.interval}}</p>{{end}}
<label>Next due <input type="date" name="due" value="{{.Due}}"></label>
{{if .Errors.due}}<p class="error">{{.Errors.due}}</p>{{end}}
<label>Kind <select name="kind">
<option value="normal"{{if eq .Kind "normal"}} selected{{end}}>normal</option>
<option value="exact"{{if eq .Kind "exact"}} selected{{end}}>exact</option>
</select></label>
<p><button type="submit">Save</button></p>
</form>
{{template "foot" .}}{{end}}

{{define "ack"}}{{template "head" .}}
<h1>Mark "{{.TaskName}}" as done</h1>
<form method="POST" action="/ack/{{.TaskID}}">
<label>Done on <input type="date" name="done" value="{{.Done}}"></label>
{{if .Errors.done}}<p class="error">{{.Errors.done}}</p>{{end}}
<label>Next due <input type="date" name="next" value="{{.Next}}"></label>
{{if .Errors.next}}<p class="error">{{.Errors.next}}</p>{{end}}
<p><button type="submit">Done</button></p>
</form>
{{if .History}}<h2>History</h2><table>
{{range .History}}<tr><td>{{.DoneLabel}}</td></tr>{{end}}
</table>{{end}}
{{template "foot" .}}{{end}}
`
