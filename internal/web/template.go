package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/microwave/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"remaining": func(ms int64) string {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	},
	"enabled": func(on bool) string {
		if on {
			return "yes"
		}
		return "no"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Microwave</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.open { color: orange; font-weight: bold; }
.closed { color: #888; }
.idle { color: #888; }
.running { color: green; font-weight: bold; }
.binging { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Microwave</h1>

<h2>State</h2>
<table>
<tr><th>Door</th><td class="{{if .DoorClosed}}closed{{else}}open{{end}}">{{.Door}}</td></tr>
<tr><th>Phase</th><td class="{{if eq .Phase "RUNNING"}}running{{else if eq .Phase "BINGING"}}binging{{else}}idle{{end}}">{{.Phase}}</td></tr>
{{if eq .Phase "RUNNING"}}<tr><th>Remaining</th><td>{{remaining .RemainingMs}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Door opens</th><td>{{.Counts.DoorOpens}}</td></tr>
<tr><th>Cooks started</th><td>{{.Counts.CookStarts}}</td></tr>
<tr><th>Cooks completed</th><td>{{.Counts.CooksDone}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Poll interval</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{.Config.HeartbeatMs}}ms</td></tr>
<tr><th>Light wired</th><td>{{enabled .Config.Features.Light}}</td></tr>
<tr><th>Speaker wired</th><td>{{enabled .Config.Features.Speaker}}</td></tr>
<tr><th>Timer dial wired</th><td>{{enabled .Config.Features.Timer}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// renderHTML writes the status page for the given snapshot.
func renderHTML(w io.Writer, snap status.Snapshot) {
	// Template errors at this point mean a bug in indexHTML; the partial
	// page is still more useful than a blank 500.
	_ = indexTmpl.Execute(w, snap)
}
