package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	assert.Equal(t, "fake-editor dev (commit: unknown, go: unknown)", Info("fake-editor"))
}
