package content

import (
	"strings"
	"testing"
)

func TestNormalize_StripsScriptsStylesComments(t *testing.T) {
	t.Parallel()

	html := `<html><head><style>body{color:red}</style></head>
<body id="main" class="home" onclick="alert(1)">
<!-- a comment -->
<script>doEvil()</script>
<a href="https://evil.example/path">link</a>
</body></html>`

	got := Normalize(html)

	for _, forbidden := range []string{"doevil", "color:red", "a comment", "id=\"main\"", "onclick", "evil.example"} {
		if strings.Contains(got, forbidden) {
			t.Fatalf("normalized output still contains %q: %q", forbidden, got)
		}
	}
	if !strings.Contains(got, "<a href=\"\">") {
		t.Fatalf("expected blanked href, got %q", got)
	}
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := Normalize("<p>a   \n\n  b</p>")
	if strings.Contains(got, "  ") {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
}
