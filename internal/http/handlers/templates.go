package handlers

import "html/template"

// Страницы намеренно повторяют минималистичный вид оригинальной страницы
// сопряжения: одна форма, крупный код, инструкция для второго устройства.
// html/template экранирует номер и код контекстно.

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<body>
<center style="font-family:system-ui,Arial;">
  <h2>Pair Code Generator</h2>
  <form action="/pair" method="get">
    <label><b>Phone number (with country code, no +)</b></label><br/>
    <input name="number" placeholder="9477XXXXXXX" required style="padding:10px;width:260px;margin:10px"/><br/>
    {{if .Gated}}
    <label><b>Access key</b></label><br/>
    <input name="key" type="password" placeholder="key" required style="padding:10px;width:260px;margin:10px"/><br/>
    {{end}}
    <button type="submit" style="padding:10px 20px;background:#008000;color:#fff;border:none;border-radius:6px">Get Pair Code</button>
  </form>
  <p style="color:gray;font-size:13px;">Example: 94771234567 (no +). Keep this page open until pairing completes.</p>
</center>
</body>
</html>
`))

var pairTmpl = template.Must(template.New("pair").Parse(`<!DOCTYPE html>
<html>
<body>
<center style="font-family:system-ui,Arial;">
  <h2>Pair code for {{.Phone}}</h2>
  <h1 style="font-size:44px;color:#0b6623;margin:10px 0">{{.Code}}</h1>
  <p>Open WhatsApp &rarr; Linked Devices &rarr; Link device &rarr; Pair with phone number &rarr; Enter this code</p>
  <p style="color:gray">Keep this page open. Wait ~5-15s after entering the code for the session to be saved.</p>
  <hr style="width:60%;margin:20px auto">
  <p style="font-size:12px;color:#666">When paired, the credentials directory on the server is updated. Copy its contents to your bot deployment (or download manually).</p>
</center>
</body>
</html>
`))
