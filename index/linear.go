package index

import (
	"github.com/sketchdb/sketchdb/signature"
)

// LinearIndex holds signatures in memory, in insertion order.
type LinearIndex struct {
	location string
	sigs     []*signature.Signature
}

func NewLinearIndex(sigs []*signature.Signature, location string) *LinearIndex {
	index := &LinearIndex{
		location: location,
		sigs:     make([]*signature.Signature, 0, len(sigs)),
	}
	index.sigs = append(index.sigs, sigs...)
	return index
}

// LoadLinearIndex reads one signature file (.sig or .sig.gz) into memory.
func LoadLinearIndex(path string) (*LinearIndex, error) {
	sigs, err := signature.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewLinearIndex(sigs, path), nil
}

func (this *LinearIndex) Location() string {
	return this.location
}

func (this *LinearIndex) Len() int {
	return len(this.sigs)
}

func (this *LinearIndex) Signatures() SignatureIterator {
	return newSliceIterator(this.sigs)
}

func (this *LinearIndex) Insert(sig *signature.Signature) error {
	this.sigs = append(this.sigs, sig)
	return nil
}

func (this *LinearIndex) Save(path string) error {
	return signature.SaveFile(this.sigs, path)
}

// Select filters into a new LinearIndex sharing the signature pointers.
func (this *LinearIndex) Select(sel Selection) (Index, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	selected := make([]*signature.Signature, 0)
	for _, sig := range this.sigs {
		if sel.Matches(sig) {
			selected = append(selected, sig)
		}
	}
	return NewLinearIndex(selected, this.location), nil
}

func (this *LinearIndex) Filter(pred func(*signature.Signature) bool) Index {
	kept := make([]*signature.Signature, 0)
	for _, sig := range this.sigs {
		if pred(sig) {
			kept = append(kept, sig)
		}
	}
	return NewLinearIndex(kept, this.location)
}
