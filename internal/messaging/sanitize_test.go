package messaging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Happy birthday!", "Happy birthday!"},
		{"bold", "<b>Happy</b> birthday", "Happy birthday"},
		{"script", "hi<script>alert(1)</script>", "hi"},
		{"attributes", `<a href="http://x" onclick="evil()">link</a>`, "link"},
		{"ampersand kept", "cake & candles", "cake & candles"},
		{"escaped markup", "&lt;b&gt;bold&lt;/b&gt;", "bold"},
		{"only tags", "<br/><hr>", ""},
		{"deeply escaped tag", "&amp;amp;amp;lt;b&amp;amp;amp;gt;hi", "hi"},
		{"deeply escaped script", "&amp;amp;amp;lt;script&amp;amp;amp;gt;x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripTags(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripTags(got), "stripping is stable")
		})
	}
}

func TestStripTags_NeverYieldsMarkup(t *testing.T) {
	inputs := []string{
		"&amp;amp;amp;lt;script&amp;amp;amp;gt;x",
		"&amp;amp;amp;amp;lt;b&amp;amp;amp;amp;gt;hi",
		"&amp;amp;amp;amp;amp;amp;lt;img src=x onerror=alert(1)&amp;amp;amp;amp;amp;amp;gt;",
	}

	for _, in := range inputs {
		assert.False(t, strings.Contains(StripTags(in), "<"), "input %q", in)
	}
}
