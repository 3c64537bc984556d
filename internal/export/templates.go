package export

import "regexp"

var mdLinkPattern = regexp.MustCompile(`href="([^":/#]+)\.md"`)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <nav class="sidebar">
    <ul>
      {{range .Nav}}<li><a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a></li>
      {{end}}
    </ul>
  </nav>
  <main class="content">
    <article class="page-content">
      {{.Content}}
    </article>
  </main>
</body>
</html>`

const cssContent = `:root {
  --bg: #ffffff;
  --bg-sidebar: #f1f3f5;
  --text: #212529;
  --border: #dee2e6;
  --accent: #228be6;
  --code-bg: #f1f3f5;
  --sidebar-width: 240px;
}
body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; color: var(--text); background: var(--bg); }
.sidebar { position: fixed; top: 0; bottom: 0; width: var(--sidebar-width); background: var(--bg-sidebar); border-right: 1px solid var(--border); padding: 1rem; }
.sidebar ul { list-style: none; padding: 0; }
.sidebar a { color: var(--text); text-decoration: none; display: block; padding: 0.3rem 0.5rem; border-radius: 4px; }
.sidebar a.active { background: var(--accent); color: #fff; }
.content { margin-left: calc(var(--sidebar-width) + 2rem); max-width: 900px; padding: 2rem; }
pre { background: var(--code-bg); padding: 1rem; overflow-x: auto; border-radius: 6px; white-space: pre-wrap; }
table { border-collapse: collapse; }
th, td { border: 1px solid var(--border); padding: 0.4rem 0.8rem; }
`
