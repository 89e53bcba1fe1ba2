package storage

import (
	"archive/zip"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestZip(t *testing.T, members map[string]string) string {
	dir, err := ioutil.TempDir("/tmp", "")
	assert.Nil(t, err)

	path := filepath.Join(dir, "test.zip")
	f, err := os.Create(path)
	assert.Nil(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	// Fixed order so entry order is predictable.
	for _, name := range []string{"a.sig", "b.txt", "sub/c.sig"} {
		content, ok := members[name]
		if !ok {
			continue
		}
		member, err := w.Create(name)
		assert.Nil(t, err)
		_, err = member.Write([]byte(content))
		assert.Nil(t, err)
	}
	assert.Nil(t, w.Close())
	return path
}

func TestZipContainerEntries(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"a.sig":     "alpha",
		"b.txt":     "beta",
		"sub/c.sig": "gamma",
	})
	defer os.RemoveAll(filepath.Dir(path))

	container, err := OpenZip(path)
	assert.Nil(t, err)
	if err != nil {
		return
	}
	defer container.Close()

	assert.Equal(t, path, container.Location())

	entries, err := container.Entries()
	assert.Nil(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "a.sig", entries[0].Name)
	assert.Equal(t, "b.txt", entries[1].Name)
	assert.Equal(t, "sub/c.sig", entries[2].Name)
	assert.Equal(t, uint64(5), entries[0].Size)
}

func TestZipContainerOpenMember(t *testing.T) {
	path := writeTestZip(t, map[string]string{"a.sig": "alpha"})
	defer os.RemoveAll(filepath.Dir(path))

	container, err := OpenZip(path)
	assert.Nil(t, err)
	if err != nil {
		return
	}
	defer container.Close()

	r, err := container.Open("a.sig")
	assert.Nil(t, err)
	content, err := ioutil.ReadAll(r)
	assert.Nil(t, err)
	assert.Nil(t, r.Close())
	assert.Equal(t, "alpha", string(content))

	_, err = container.Open("missing.sig")
	assert.Equal(t, MemberNotFoundErr, err)
}

func TestOpenZipMissingFile(t *testing.T) {
	_, err := OpenZip("/tmp/no-such-archive.zip")
	assert.NotNil(t, err)
}
