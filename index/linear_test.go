package index

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sketchdb/sketchdb/signature"
	"github.com/sketchdb/sketchdb/sketch"
)

func collectNames(idx Index) []string {
	names := make([]string, 0)
	for _, sig := range Collect(idx.Signatures()) {
		names = append(names, sig.Name())
	}
	return names
}

func TestLinearIndexInsertAndEnumerate(t *testing.T) {
	idx := NewLinearIndex(nil, "mem")
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, "mem", idx.Location())

	assert.Nil(t, idx.Insert(newTestSig(t, "a", 1, 2, 3)))
	assert.Nil(t, idx.Insert(newTestSig(t, "b", 4, 5, 6)))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"a", "b"}, collectNames(idx))

	// Iterators are independent: a fresh one starts over.
	assert.Equal(t, []string{"a", "b"}, collectNames(idx))
}

func TestLinearIndexSelect(t *testing.T) {
	mh21, err := sketch.NewScaledMinHash(21, sketch.DNA, 1000, false)
	assert.Nil(t, err)
	mh21.AddMany([]uint64{1, 2, 3})

	idx := NewLinearIndex([]*signature.Signature{
		newTestSigScaled(t, "k31", 1000, 1, 2, 3),
		signature.New("k21", "", mh21),
		newTestSigNum(t, "n100", 100, 1, 2, 3),
	}, "loc")

	selected, err := idx.Select(Selection{Ksize: 31})
	assert.Nil(t, err)
	assert.Equal(t, []string{"k31"}, collectNames(selected))
	assert.Equal(t, "loc", selected.Location())

	selected, err = idx.Select(Selection{Scaled: 1000})
	assert.Nil(t, err)
	assert.Equal(t, []string{"k31", "k21"}, collectNames(selected))

	selected, err = idx.Select(Selection{Num: 100})
	assert.Nil(t, err)
	assert.Equal(t, []string{"n100"}, collectNames(selected))

	// The original index is untouched.
	assert.Equal(t, 3, idx.Len())

	_, err = idx.Select(Selection{Containment: true})
	assert.Equal(t, ContainmentRequiresScaledErr, err)
}

func TestLinearIndexSelectSharesSignatures(t *testing.T) {
	a := newTestSig(t, "a", 1, 2, 3)
	idx := NewLinearIndex([]*signature.Signature{a}, "")

	selected, err := idx.Select(Selection{Ksize: 31})
	assert.Nil(t, err)

	got := Collect(selected.Signatures())
	assert.Len(t, got, 1)
	assert.True(t, got[0] == a)
}

func TestLinearIndexSelectIdempotent(t *testing.T) {
	idx := NewLinearIndex([]*signature.Signature{
		newTestSigScaled(t, "a", 1000, 1, 2, 3),
		newTestSigNum(t, "b", 100, 1, 2, 3),
	}, "")

	sel := Selection{Ksize: 31, Scaled: 1000}
	once, err := idx.Select(sel)
	assert.Nil(t, err)
	twice, err := once.Select(sel)
	assert.Nil(t, err)

	assert.Equal(t, Collect(once.Signatures()), Collect(twice.Signatures()))
}

func TestLinearIndexSaveLoadRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("/tmp", "")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	idx := NewLinearIndex([]*signature.Signature{
		newTestSig(t, "a", 1, 2, 3),
		newTestSig(t, "b", 4, 5, 6),
	}, "")

	path := filepath.Join(dir, "out.sig")
	assert.Nil(t, idx.Save(path))

	loaded, err := LoadLinearIndex(path)
	assert.Nil(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, path, loaded.Location())
	assert.Equal(t, 2, loaded.Len())

	original := Collect(idx.Signatures())
	restored := Collect(loaded.Signatures())
	for i := range original {
		assert.True(t, restored[i].Equal(original[i]))
	}
}

func TestLinearIndexFilter(t *testing.T) {
	idx := NewLinearIndex([]*signature.Signature{
		newTestSig(t, "keep", 1, 2, 3),
		newTestSig(t, "drop", 4, 5, 6),
	}, "loc")

	filtered := idx.Filter(func(sig *signature.Signature) bool {
		return sig.Name() == "keep"
	})

	assert.Equal(t, []string{"keep"}, collectNames(filtered))
	assert.Equal(t, 2, idx.Len())
}

func TestLoadLinearIndexMissingFile(t *testing.T) {
	_, err := LoadLinearIndex("/tmp/no-such-file.sig")
	assert.NotNil(t, err)
}
