package api

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/alexivanou/cityweather/internal/model"
	"go.uber.org/zap"
)

type pageData struct {
	State   model.State
	IconURL string
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// Page handles GET /
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	s := h.lookup.State()
	data := pageData{State: s, IconURL: h.stateResponse(s).IconURL}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("Error rendering page", zap.Error(err))
	}
}

// PageSubmit handles POST / from the search form. Blank input leaves the
// state as it was.
func (h *Handler) PageSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	city := r.FormValue("city")
	if strings.TrimSpace(city) != "" && !h.lookup.Submit(city) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Weather</title>
<style>
body { font-family: -apple-system, system-ui, sans-serif; max-width: 28rem; margin: 2rem auto; padding: 0 1rem; }
form { display: flex; gap: .5rem; }
input[type=text] { flex: 1; padding: .5rem; font-size: 1rem; }
button { padding: .5rem 1rem; font-size: 1rem; }
.spinner { margin: 2rem auto; width: 2rem; height: 2rem; border: 3px solid #ddd; border-top-color: #333; border-radius: 50%; animation: spin 1s linear infinite; }
@keyframes spin { to { transform: rotate(360deg); } }
.error { margin-top: 1rem; padding: .75rem; background: #fde8e8; color: #9b1c1c; border-radius: .5rem; }
.card { margin-top: 1rem; padding: 1rem; border-radius: .75rem; background: #eef4fb; text-align: center; }
.card img { width: 100px; height: 100px; }
.temp { font-size: 2.5rem; font-weight: 600; }
</style>
</head>
<body>
<h1>Weather</h1>
<form method="post" action="/">
  <input type="text" name="city" list="cities" placeholder="Enter city name" value="{{.State.City}}" autocomplete="off">
  <datalist id="cities"></datalist>
  <button type="submit">Get Weather</button>
</form>
<div id="state">
{{- if .State.IsLoading}}
  <div class="spinner" role="status" aria-label="Loading"></div>
{{- else if .State.IsFailure}}
  <div class="error">{{.State.Error}}</div>
{{- else if .State.IsSuccess}}
  <div class="card">
    <h2>{{.State.Record.Name}}</h2>
    {{if .IconURL}}<img src="{{.IconURL}}" alt="{{.State.Record.Description}}">{{end}}
    <p>{{.State.Record.Description}}</p>
    <p class="temp">{{printf "%.1f" .State.Record.Temperature}}°</p>
    <p>Humidity: {{.State.Record.Humidity}}%</p>
    <p>Feels like: {{printf "%.1f" .State.Record.FeelsLike}}°</p>
  </div>
{{- end}}
</div>
<script>
(function () {
  var region = document.getElementById("state");
  function el(tag, cls, text) {
    var e = document.createElement(tag);
    if (cls) e.className = cls;
    if (text !== undefined) e.textContent = text;
    return e;
  }
  function render(resp) {
    var s = resp.state;
    region.replaceChildren();
    if (s.phase === "loading") {
      region.appendChild(el("div", "spinner"));
    } else if (s.phase === "failure") {
      region.appendChild(el("div", "error", s.error));
    } else if (s.phase === "success") {
      var r = s.record, card = el("div", "card");
      card.appendChild(el("h2", "", r.name));
      if (resp.icon_url) { var img = el("img"); img.src = resp.icon_url; img.alt = r.description; card.appendChild(img); }
      card.appendChild(el("p", "", r.description));
      card.appendChild(el("p", "temp", r.temp.toFixed(1) + "°"));
      card.appendChild(el("p", "", "Humidity: " + r.humidity + "%"));
      card.appendChild(el("p", "", "Feels like: " + r.feels_like.toFixed(1) + "°"));
      region.appendChild(card);
    }
  }
  if (window.EventSource) {
    new EventSource("/api/v1/weather/stream").addEventListener("state", function (ev) {
      render(JSON.parse(ev.data));
    });
  }
  var input = document.querySelector("input[name=city]"), list = document.getElementById("cities");
  input.addEventListener("input", function () {
    var q = input.value.trim();
    if (q.length < 2) return;
    fetch("/api/v1/suggest?limit=8&q=" + encodeURIComponent(q))
      .then(function (r) { return r.ok ? r.json() : { results: [] }; })
      .then(function (data) {
        list.replaceChildren();
        data.results.forEach(function (c) { var o = el("option"); o.value = c.query; list.appendChild(o); });
      })
      .catch(function () {});
  });
})();
</script>
</body>
</html>
`
