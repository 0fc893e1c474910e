package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
	assert.NotEmpty(t, GetGitCommit())
	assert.NotEmpty(t, GetBuildDate())
	assert.True(t, strings.HasPrefix(UserAgent(), "urlookup/"))
	assert.True(t, strings.HasSuffix(UserAgent(), GetVersion()))
}
