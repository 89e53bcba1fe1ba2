package index

import (
	"errors"

	"github.com/sketchdb/sketchdb/signature"
)

var (
	ReadOnlyIndexErr             error = errors.New("Index is read-only")
	BothContainmentErr           error = errors.New("Cannot unify containment and max containment search")
	RequiresScaledErr            error = errors.New("Gather requires scaled sketches")
	ContainmentRequiresScaledErr error = errors.New("Containment selection requires scaled sketches")
	IncompatibleSelectionErr     error = errors.New("Incompatible selection constraints")
	LengthMismatchErr            error = errors.New("Index list and source list lengths differ")
	NoSignaturesFoundErr         error = errors.New("No signatures found")
)

// Index is a queryable collection of signatures. Enumerating twice yields the
// same multiset in the same order unless the backing store changed in between.
// Read-only backends answer Insert and Save with ReadOnlyIndexErr.
type Index interface {
	Location() string
	Len() int
	Signatures() SignatureIterator
	Insert(sig *signature.Signature) error
	Save(path string) error
	Select(sel Selection) (Index, error)
}

type SignatureIterator interface {
	Next() (*signature.Signature, bool)
}

// Searcher and Gatherer are implemented by indexes that need to override the
// default scan, e.g. to rewrite result provenance. The package-level Search
// and Gather dispatch to them when present.
type Searcher interface {
	Search(query *signature.Signature, threshold float64, options ...SearchOption) (SearchResults, error)
}

type Gatherer interface {
	Gather(query *signature.Signature, thresholdBp uint64) (GatherResults, error)
}

// Filterer is implemented by indexes that can drop signatures without
// materializing the whole collection.
type Filterer interface {
	Filter(pred func(*signature.Signature) bool) Index
}

type SearchResult struct {
	Score     float64
	Signature *signature.Signature
	Location  string
}

type SearchResults []SearchResult

func (this SearchResults) Len() int {
	return len(this)
}

func (this SearchResults) Swap(i, j int) {
	this[i], this[j] = this[j], this[i]
}

func (this SearchResults) Less(i, j int) bool {
	return this[i].Score < this[j].Score
}

type GatherResult struct {
	Containment float64
	Signature   *signature.Signature
	Location    string
}

type GatherResults []GatherResult

func (this GatherResults) Len() int {
	return len(this)
}

func (this GatherResults) Swap(i, j int) {
	this[i], this[j] = this[j], this[i]
}

// Less orders by containment, breaking ties on the signature fingerprint so
// equal-containment results have a stable order under sort.Reverse.
func (this GatherResults) Less(i, j int) bool {
	if this[i].Containment != this[j].Containment {
		return this[i].Containment < this[j].Containment
	}
	return this[i].Signature.Fingerprint() < this[j].Signature.Fingerprint()
}

type sliceIterator struct {
	sigs []*signature.Signature
	pos  int
}

func newSliceIterator(sigs []*signature.Signature) *sliceIterator {
	return &sliceIterator{sigs: sigs}
}

func (this *sliceIterator) Next() (*signature.Signature, bool) {
	if this.pos >= len(this.sigs) {
		return nil, false
	}
	sig := this.sigs[this.pos]
	this.pos++
	return sig, true
}

// Collect drains an iterator into a slice.
func Collect(it SignatureIterator) []*signature.Signature {
	sigs := make([]*signature.Signature, 0)
	for sig, ok := it.Next(); ok; sig, ok = it.Next() {
		sigs = append(sigs, sig)
	}
	return sigs
}
