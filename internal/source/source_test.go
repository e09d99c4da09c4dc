package source

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	cases := map[string]any{
		"orders.edi":     &TextExtractor{},
		"ORDERS.EDIFACT": &TextExtractor{},
		"notes.md":       &MarkdownExtractor{},
		"page.htm":       &HTMLExtractor{},
		"scan.pdf":       &PDFExtractor{},
		"spec.docx":      &DOCXExtractor{},
	}
	for name, want := range cases {
		got, err := ForFile(name, Options{})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if wantType, gotType := typeName(want), typeName(got); wantType != gotType {
			t.Errorf("%s: expected %s, got %s", name, wantType, gotType)
		}
	}

	if _, err := ForFile("data.csv", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	ex, err := ForFile("scan.pdf", Options{PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ex.(*PDFExtractor).FallbackPdftotext {
		t.Error("expected pdftotext fallback to be enabled")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.EDI") {
		t.Error("expected .EDI to be supported")
	}
	if IsSupportedExtension("a.exe") {
		t.Error("expected .exe to be unsupported")
	}
}

func TestTextExtractor_StripsBOM(t *testing.T) {
	e := &TextExtractor{}
	got, err := e.Extract(strings.NewReader("\ufeffUNB+x'"), "a.edi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "UNB+x'" {
		t.Errorf("expected BOM stripped, got %q", got)
	}
}

func TestMarkdownExtractor_PrefersTaggedBlocks(t *testing.T) {
	input := "# Sample order\n\n" +
		"Some prose.\n\n" +
		"```json\n{\"not\": \"edi\"}\n```\n\n" +
		"```edifact\nUNB+UNOA:1+S+R'\nUNZ+0'\n```\n"
	e := &MarkdownExtractor{}
	got, err := e.Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "UNB+UNOA:1+S+R'\nUNZ+0'"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownExtractor_UntaggedBlocks(t *testing.T) {
	input := "Intro\n\n```\nUNB+a'\n```\n\n    UNZ+0'\n"
	e := &MarkdownExtractor{}
	got, err := e.Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "UNB+a'\nUNZ+0'" {
		t.Errorf("unexpected extraction %q", got)
	}
}

func TestMarkdownExtractor_NoBlocks(t *testing.T) {
	e := &MarkdownExtractor{}
	got, err := e.Extract(strings.NewReader("UNB+a'UNZ+0'"), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "UNB+a'UNZ+0'" {
		t.Errorf("expected raw text, got %q", got)
	}
}

func TestHTMLExtractor_PreBlocks(t *testing.T) {
	input := `<html><head><title>x</title><style>p{}</style></head><body>
<p>Order from partner</p>
<pre><code>UNB+a'UNH+1+ORDERS'</code></pre>
<pre>UNT+1+1'UNZ+1'</pre>
</body></html>`
	e := &HTMLExtractor{}
	got, err := e.Extract(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "UNB+a'UNH+1+ORDERS'\nUNT+1+1'UNZ+1'"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLExtractor_BodyFallback(t *testing.T) {
	input := `<html><body><script>var x;</script><p>UNB+a'UNZ+0'</p></body></html>`
	e := &HTMLExtractor{}
	got, err := e.Extract(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "UNB+a'UNZ+0'" {
		t.Errorf("expected body text, got %q", got)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextExtractor:
		return "text"
	case *MarkdownExtractor:
		return "markdown"
	case *HTMLExtractor:
		return "html"
	case *PDFExtractor:
		return "pdf"
	case *DOCXExtractor:
		return "docx"
	}
	return "unknown"
}
