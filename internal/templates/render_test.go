package templates

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{"<script>alert('x')</script>", "&lt;script&gt;alert(&#x27;x&#x27;)&lt;/script&gt;"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"&amp;", "&amp;amp;"},
		{"café ✈", "café ✈"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EscapeHTML(tc.in), "input %q", tc.in)
	}
}

func TestRender_ReplacesAllOccurrences(t *testing.T) {
	tmpl := "<p>{{USER_NAME}}</p><a href=\"mailto:{{USER_EMAIL}}\">{{USER_EMAIL}}</a>"
	got := Render(tmpl, map[string]string{
		"{{USER_NAME}}":  "John Doe",
		"{{USER_EMAIL}}": "john@example.com",
	})
	assert.Equal(t, "<p>John Doe</p><a href=\"mailto:john@example.com\">john@example.com</a>", got)
}

func TestRender_LeavesUnmappedPlaceholders(t *testing.T) {
	tmpl := "{{USER_NAME}} / {{UNKNOWN}} / {{INQUIRY_ID}}"
	got := Render(tmpl, map[string]string{"{{USER_NAME}}": "Ann"})
	assert.Equal(t, "Ann / {{UNKNOWN}} / {{INQUIRY_ID}}", got)
}

func TestRender_EmptyMapping(t *testing.T) {
	tmpl := "<b>{{USER_NAME}}</b>"
	assert.Equal(t, tmpl, Render(tmpl, nil))
	assert.Equal(t, tmpl, Render(tmpl, map[string]string{"": "ignored"}))
}

func TestRender_Idempotent(t *testing.T) {
	tmpl := NewEmbeddedStore().Load(SupportEmail)
	values := map[string]string{
		"{{USER_NAME}}":     "Ann & <Bob>",
		"{{USER_EMAIL}}":    "ann@example.com",
		"{{USER_QUESTION}}": `"quoted" 'single'`,
		"{{INQUIRY_ID}}":    "ABCD1234",
	}
	first := Render(tmpl, values)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Render(tmpl, values))
	}
	assert.Contains(t, first, "{{TIMESTAMP}}")
}

// A value containing another token must not be expanded by a later substitution.
func TestRender_ValuesAreNotRescanned(t *testing.T) {
	tmpl := "name={{USER_NAME}} email={{USER_EMAIL}}"
	values := map[string]string{
		"{{USER_NAME}}":  "{{USER_EMAIL}}",
		"{{USER_EMAIL}}": "x@example.com",
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "name={{USER_EMAIL}} email=x@example.com", Render(tmpl, values))
	}
}

var (
	rawSpecial = regexp.MustCompile(`[<>"']`)
	loneAmp    = regexp.MustCompile(`&(amp|lt|gt|quot|#x27);`)
)

func TestRender_EscapesHostileValues(t *testing.T) {
	inputs := []string{
		`<img src=x onerror="alert(1)">`,
		`' OR '1'='1`,
		`a & b && c`,
		`&lt;already&gt;`,
		strings.Repeat(`<>"'&`, 50),
	}
	for _, in := range inputs {
		out := Render("{{V}}", map[string]string{"{{V}}": in})
		assert.False(t, rawSpecial.MatchString(out), "unescaped character in %q", out)
		stripped := loneAmp.ReplaceAllString(out, "")
		assert.NotContains(t, stripped, "&", "lone ampersand in %q", out)
	}
}
