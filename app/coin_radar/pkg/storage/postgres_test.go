package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "plain", cleanText("plain"))
	assert.Equal(t, "ab", cleanText("a\x00b"))
	assert.Equal(t, "okay", cleanText("ok\xffay"))
	assert.Equal(t, "中文", cleanText("中\x00文"))
}
