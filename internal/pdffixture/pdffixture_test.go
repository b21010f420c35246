package pdffixture

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildXrefOffsets(t *testing.T) {
	data := Build(Pages(3))

	require.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4\n")))
	require.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))

	entries := regexp.MustCompile(`(?m)^(\d{10}) 00000 n $`).FindAllSubmatch(data, -1)
	// catalog, pages, font, then page + contents for each page
	require.Len(t, entries, 3+2*3)
	for i, entry := range entries {
		offset, err := strconv.Atoi(string(entry[1]))
		require.NoError(t, err)
		want := fmt.Sprintf("%d 0 obj\n", i+1)
		assert.Equal(t, want, string(data[offset:offset+len(want)]), "object %d", i+1)
	}

	startxref := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(data)
	require.NotNil(t, startxref)
	offset, err := strconv.Atoi(string(startxref[1]))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data[offset:], []byte("xref\n")))
}

func TestBuildPageAttributes(t *testing.T) {
	data := string(Build([]Page{{Width: 595.5, Height: 842, Text: "a (b)", Rotate: 90}}))

	assert.Contains(t, data, "/MediaBox [0 0 595.5 842]")
	assert.Contains(t, data, "/Rotate 90")
	assert.Contains(t, data, `(a \(b\)) Tj`)
	assert.Contains(t, data, "/Count 1")
}

func TestBuildEncrypted(t *testing.T) {
	data := BuildEncrypted(Pages(2), "secret123", "")

	assert.Contains(t, string(data), "/Filter /Standard /V 1 /R 2 /Length 40")
	assert.Regexp(t, `/Encrypt 8 0 R /ID \[<[0-9a-f]{32}> <[0-9a-f]{32}>\]`, string(data))
	assert.NotContains(t, string(data), "Hello Page 1", "content streams must be encrypted")
	assert.Equal(t, data, BuildEncrypted(Pages(2), "secret123", ""), "output is deterministic")

	// RC4 is symmetric, so encrypting the stored stream again yields the plain text
	start := bytes.Index(data, []byte("5 0 obj\n"))
	require.GreaterOrEqual(t, start, 0)
	match := regexp.MustCompile(`(?s)<< /Length (\d+) >>\nstream\n`).FindSubmatchIndex(data[start:])
	require.NotNil(t, match)
	length, err := strconv.Atoi(string(data[start+match[2] : start+match[3]]))
	require.NoError(t, err)
	stored := data[start+match[1] : start+match[1]+length]

	enc := newEncryption("secret123", "")
	assert.Contains(t, string(enc.object(5, stored)), "(Hello Page 1) Tj")
}

func TestEncryptionValues(t *testing.T) {
	enc := newEncryption("secret123", "owner")
	assert.Len(t, enc.key, 5)
	assert.Len(t, enc.owner, 32)
	assert.Len(t, enc.user, 32)
	assert.NotEqual(t, enc.owner, newEncryption("secret123", "").owner, "owner entry depends on the owner password")
	assert.NotEqual(t, enc.key, newEncryption("other", "owner").key)
	assert.Equal(t, passwordPad, padPassword(""))
	assert.Equal(t, append([]byte("ab"), passwordPad[:30]...), padPassword("ab"))
}
