package api

// docsPage renders Swagger UI against the locally served merged
// document, with a source list in the page footer.
const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  <style>
    .specgate-sources { font-family: sans-serif; margin: 1em 2em; color: #3b4151; }
    .specgate-sources ul { list-style: none; padding: 0; }
    .specgate-sources li { margin: 0.2em 0; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <div class="specgate-sources">
    <h3>Aggregated services</h3>
    <ul>
    {{- range .Sources}}
      <li>{{.DisplayName}}{{if .URL}} &middot; <code>{{.URL}}</code>{{end}}</li>
    {{- end}}
    </ul>
  </div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({
        url: "openapi.json",
        dom_id: "#swagger-ui",
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis],
      });
    };
  </script>
</body>
</html>
`
