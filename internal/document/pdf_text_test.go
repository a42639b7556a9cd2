package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCMap(t *testing.T, body string) *unicodeCMap {
	t.Helper()
	cm := parseCMap(body)
	require.NotNil(t, cm, "cmap should contain mappings")
	return cm
}

func TestUnicodeCMap(t *testing.T) {
	t.Run("identity range across high byte", func(t *testing.T) {
		cm := newCMap(t, `1 begincodespacerange <0000> <FFFF> endcodespacerange
1 beginbfrange <0000> <FFFF> <0000> endbfrange`)

		assert.Equal(t, "ह", cm.Decode("\x09\x39"))
		assert.Equal(t, "यह।", cm.Decode("\x09\x2f\x09\x39\x09\x64"))
		assert.Equal(t, "A", cm.Decode("\x00\x41"))
	})

	t.Run("bfchar and single byte range", func(t *testing.T) {
		cm := newCMap(t, `1 begincodespacerange <00> <FF> endcodespacerange
1 beginbfchar <01> <0915> endbfchar
1 beginbfrange <02> <04> <0916> endbfrange`)

		assert.Equal(t, "कखगघ", cm.Decode("\x01\x02\x03\x04"))
	})

	t.Run("array destinations", func(t *testing.T) {
		cm := newCMap(t, `1 begincodespacerange <0000> <00FF> endcodespacerange
1 beginbfrange <0010> <0012> [<0915> <0915094D> <0937>] endbfrange`)

		assert.Equal(t, "कक्ष", cm.Decode("\x00\x10\x00\x11\x00\x12"))
		assert.Equal(t, "�", cm.Decode("\x00\x20"))
	})

	t.Run("no mappings", func(t *testing.T) {
		assert.Nil(t, parseCMap("1 begincodespacerange <0000> <FFFF> endcodespacerange"))
	})

	t.Run("surrogate pair destination", func(t *testing.T) {
		cm := newCMap(t, `1 beginbfchar <0001> <D83DDE00> endbfchar`)
		assert.Equal(t, "😀", cm.Decode("\x00\x01"))
	})
}
