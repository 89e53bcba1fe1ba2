package index

import (
	"strings"

	"github.com/sketchdb/sketchdb/signature"
	"github.com/sketchdb/sketchdb/storage"
)

// ZipFileIndex reads signatures straight out of a zip archive. The member
// list is taken once at construction; member contents are re-read on every
// enumeration. Members that do not decode as signatures yield nothing and no
// error.
type ZipFileIndex struct {
	container        storage.Container
	entries          []storage.Entry
	selection        Selection
	traverseYieldAll bool
}

// NewZipFileIndex wraps an open container. Listing the members happens here,
// so a container that cannot be listed fails the construction instead of
// enumerating as empty.
func NewZipFileIndex(container storage.Container, traverseYieldAll bool) (*ZipFileIndex, error) {
	entries, err := container.Entries()
	if err != nil {
		return nil, err
	}
	return &ZipFileIndex{
		container:        container,
		entries:          entries,
		traverseYieldAll: traverseYieldAll,
	}, nil
}

// OpenZipFileIndex opens an archive. By default only members named *.sig or
// *.sig.gz are considered; traverseYieldAll widens that to every member.
func OpenZipFileIndex(path string, traverseYieldAll bool) (*ZipFileIndex, error) {
	container, err := storage.OpenZip(path)
	if err != nil {
		return nil, err
	}
	index, err := NewZipFileIndex(container, traverseYieldAll)
	if err != nil {
		container.Close()
		return nil, err
	}
	return index, nil
}

func (this *ZipFileIndex) Location() string {
	return this.container.Location()
}

func (this *ZipFileIndex) Len() int {
	count := 0
	it := this.Signatures()
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		count++
	}
	return count
}

func (this *ZipFileIndex) Signatures() SignatureIterator {
	return &zipIterator{index: this, entries: this.entries}
}

func (this *ZipFileIndex) Insert(sig *signature.Signature) error {
	return ReadOnlyIndexErr
}

func (this *ZipFileIndex) Save(path string) error {
	return ReadOnlyIndexErr
}

// Select attaches constraints to a new view over the same archive handle.
// Filtering happens during iteration; nothing is materialized.
func (this *ZipFileIndex) Select(sel Selection) (Index, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	merged, err := this.selection.Merge(sel)
	if err != nil {
		return nil, err
	}
	return &ZipFileIndex{
		container:        this.container,
		entries:          this.entries,
		selection:        merged,
		traverseYieldAll: this.traverseYieldAll,
	}, nil
}

// Close releases the archive handle shared by this index and every view
// derived from it through Select.
func (this *ZipFileIndex) Close() error {
	return this.container.Close()
}

func (this *ZipFileIndex) qualifies(name string) bool {
	if this.traverseYieldAll {
		return true
	}
	return strings.HasSuffix(name, ".sig") || strings.HasSuffix(name, ".sig.gz")
}

// decodeEntry loads the signatures of one archive member. Unreadable or
// malformed members are skipped silently.
func (this *ZipFileIndex) decodeEntry(entry storage.Entry) []*signature.Signature {
	if !this.qualifies(entry.Name) {
		return nil
	}
	r, err := this.container.Open(entry.Name)
	if err != nil {
		return nil
	}
	defer r.Close()

	sigs, err := signature.DecodeMaybeGzip(entry.Name, r)
	if err != nil {
		return nil
	}
	if this.selection.Empty() {
		return sigs
	}

	selected := make([]*signature.Signature, 0, len(sigs))
	for _, sig := range sigs {
		if this.selection.Matches(sig) {
			selected = append(selected, sig)
		}
	}
	return selected
}

type zipIterator struct {
	index   *ZipFileIndex
	entries []storage.Entry
	pos     int
	pending []*signature.Signature
	ppos    int
}

func (this *zipIterator) Next() (*signature.Signature, bool) {
	for {
		if this.ppos < len(this.pending) {
			sig := this.pending[this.ppos]
			this.ppos++
			return sig, true
		}
		if this.pos >= len(this.entries) {
			return nil, false
		}
		this.pending = this.index.decodeEntry(this.entries[this.pos])
		this.ppos = 0
		this.pos++
	}
}
