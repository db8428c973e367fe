package render

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "A fast web framework", want: "A fast web framework"},
		{name: "entities", in: `Tom & "Jerry" <3 'cheese'`, want: "Tom &amp; &quot;Jerry&quot; &lt;3 &#039;cheese&#039;"},
		{
			name: "mixed markup",
			in:   "<script>x</script><b>Bold</b> 'quote' & <br>next",
			want: "xBold &#039;quote&#039; &amp;\nnext",
		},
		{name: "formatting tags any case", in: "<CODE>go get</Code> <h2 id=\"x\">Title</h2>", want: "go get Title"},
		{name: "self closing break", in: "one<br/>two<BR />three", want: "one\ntwo\nthree"},
		{name: "anchor with attributes", in: `see <a href="https://x.test">docs</a>`, want: "see docs"},
		{name: "comparison kept", in: "a < b and c > d", want: "a &lt; b and c &gt; d"},
		{name: "generic type kept", in: "A Result<T, E> and Vec<u8> helper", want: "A Result&lt;T, E&gt; and Vec&lt;u8&gt; helper"},
		{name: "tag-like comparison kept", in: "if a<b and c>d then", want: "if a&lt;b and c&gt;d then"},
		{name: "unknown element kept", in: "wraps <Option<String>>", want: "wraps &lt;Option&lt;String&gt;&gt;"},
		{name: "quoted attributes", in: `<img src='logo.png' alt="Logo"/>Fast <span class="x">lib</span>`, want: "Fast lib"},
		{name: "whitespace collapsed", in: "  lots \t of\n\n\nspace  ", want: "lots of\nspace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitize_NoRawAngleBrackets(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<script>alert(1)</script>",
		"<<b>>nested<</b>>",
		"<div><span>deep</span></div>",
		"<pre>\n<kbd>ctrl</kbd>\n</pre>",
	}
	for _, in := range inputs {
		if got := Sanitize(in); strings.ContainsAny(got, "<>") {
			t.Errorf("Sanitize(%q) = %q contains raw angle brackets", in, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 10); got != "abcdefghij" {
		t.Errorf("truncate exact = %q", got)
	}
	if got := truncate("abcdefghijk", 10); got != "abcdefghij..." {
		t.Errorf("truncate long = %q", got)
	}
	if got := truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("truncate runes = %q", got)
	}
	if got := truncate("abc &amp; def", 6); got != "abc ..." {
		t.Errorf("truncate entity = %q", got)
	}
}
