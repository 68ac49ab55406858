package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildStorageKeyIsRoomScopedAndIgnoresClientNames(t *testing.T) {
	key := BuildStorageKey("room-1", "../../etc/passwd.pdf")
	assert.True(t, strings.HasPrefix(key, "room-1/"))
	assert.NotContains(t, strings.TrimPrefix(key, "room-1/"), "/")
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	// Two uploads of the same file never collide.
	assert.NotEqual(t, BuildStorageKey("room-1", "deck.pdf"), BuildStorageKey("room-1", "deck.pdf"))
}

func TestBuildStorageKeyDropsSuspiciousExtensions(t *testing.T) {
	key := BuildStorageKey("room-1", "archive.averylongextension")
	assert.False(t, strings.Contains(key, "averylongextension"))

	key = BuildStorageKey("room-1", "no-extension")
	assert.NotContains(t, key, ".")
}

func TestSanitizeDispositionName(t *testing.T) {
	assert.Equal(t, "report.pdf", sanitizeDispositionName("report.pdf"))
	assert.Equal(t, "report.pdf", sanitizeDispositionName("re\"port\r\n.pdf"))
	assert.Equal(t, "download", sanitizeDispositionName(""))
}
