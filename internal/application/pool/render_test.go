package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	out := Render("Hi {{name}}, your code is {{otp}}", map[string]string{
		"name": "Ada",
		"otp":  "X7K2P9",
	})
	assert.Equal(t, "Hi Ada, your code is X7K2P9", out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Hi {{name}}, see {{link}}", map[string]string{"name": "Ada"})
	assert.Equal(t, "Hi Ada, see {{link}}", out)
}

func TestRenderHTMLEscapesValues(t *testing.T) {
	out := RenderHTML("<p>{{name}}</p>", map[string]string{"name": "<script>"})
	assert.Equal(t, "<p>&lt;script&gt;</p>", out)
}
