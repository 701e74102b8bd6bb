package page

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title> Contact </title>
  <script src="https://cdn.example.com/lib.js"></script>
  <script>var sections = ["42"];</script>
  <script type="application/ld+json">{"@type": "Thing"}</script>
</head>
<body>
  <div id="main" class="card wide">
    <h1>Hello</h1>
    <a id="call" href="#">Call us</a>
  </div>
  <script type="text/javascript">gbGoToSection(sections[0]);</script>
</body>
</html>`

func TestParseScripts(t *testing.T) {
	p, err := ParseString(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Contact", p.Title)
	require.Len(t, p.Scripts, 3)
	assert.False(t, p.Scripts[0].Inline())
	assert.Equal(t, []string{"https://cdn.example.com/lib.js"}, p.External())
	assert.Equal(t, "var sections = [\"42\"];;\ngbGoToSection(sections[0]);", p.Script())
}

func TestPageDOM(t *testing.T) {
	p, err := ParseString(samplePage)
	require.NoError(t, err)

	dom := p.DOM()

	main := dom.Query("#main")
	require.Len(t, main, 1)
	assert.Equal(t, "div", main[0].TagName)
	assert.Equal(t, "card wide", main[0].ClassName)
	assert.Len(t, main[0].Children, 2)

	call := dom.Query("#call")
	require.Len(t, call, 1)
	assert.Equal(t, "Call us", call[0].TextContent)
	assert.Equal(t, "#", call[0].GetAttribute("href"))

	assert.Empty(t, dom.Query("script"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(samplePage), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, p.Scripts, 3)

	_, err = Load(filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}

func TestRunPageInSandbox(t *testing.T) {
	p, err := ParseString(samplePage)
	require.NoError(t, err)

	rt, err := sandbox.New(sandbox.DefaultConfig())
	require.NoError(t, err)
	defer rt.Close()

	result, err := rt.Execute(context.Background(), p.Script()+`;
		document.getElementById("main").className`, p.DOM())
	require.NoError(t, err)

	assert.Equal(t, "card wide", result.Value)
	assert.Equal(t, "goodbarber://gotosection?id=42", result.Location)
}
