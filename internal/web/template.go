package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/led-button/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>LED Button</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: green; font-weight: bold; }
.idle { color: #888; }
</style>
</head>
<body>
<h1>LED Button</h1>

<h2>State</h2>
<table>
<tr><th>Button (pin {{.Config.ButtonPin}})</th><td id="button-state" class="{{if eq (printf "%s" .Button) "PRESSED"}}active{{else}}idle{{end}}">{{orUnknown (printf "%s" .Button)}}</td></tr>
<tr><th>LED (pin {{.Config.LEDPin}})</th><td id="led-state" class="{{if eq (printf "%s" .LED) "ON"}}active{{else}}idle{{end}}">{{orUnknown (printf "%s" .LED)}}</td></tr>
<tr><th>Interrupt</th><td>{{if .Armed}}armed{{else}}off{{end}}</td></tr>
<tr><th>MQTT</th><td>{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Releases</th><td>{{.Counts.Releases}}</td></tr>
<tr><th>Interrupts</th><td>{{.Counts.Interrupts}}</td></tr>
<tr><th>LED on</th><td>{{.Counts.LEDOn}}</td></tr>
<tr><th>LED off</th><td>{{.Counts.LEDOff}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Driver</th><td>{{.Config.Driver}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Blink every</th><td>{{if eq .Config.BlinkEveryMs 0}}disabled{{else}}{{.Config.BlinkEveryMs}}ms{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
