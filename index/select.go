package index

import (
	"github.com/sketchdb/sketchdb/signature"
	"github.com/sketchdb/sketchdb/sketch"
)

// Selection narrows an index to compatible signatures. Zero-valued fields are
// unconstrained. Containment marks that the caller intends containment
// queries, which only scaled sketches support.
type Selection struct {
	Ksize       uint32
	Moltype     sketch.Moltype
	Scaled      uint64
	Num         uint32
	Containment bool
}

func (this Selection) Empty() bool {
	return this.Ksize == 0 &&
		this.Moltype == "" &&
		this.Scaled == 0 &&
		this.Num == 0 &&
		!this.Containment
}

// Validate reports constraint combinations that can never match. It runs
// before any signatures are pulled.
func (this Selection) Validate() error {
	if this.Containment && this.Scaled == 0 {
		return ContainmentRequiresScaledErr
	}
	return nil
}

func (this Selection) Matches(sig *signature.Signature) bool {
	mh := sig.Sketch()
	if this.Ksize != 0 && mh.Ksize() != this.Ksize {
		return false
	}
	if this.Moltype != "" && mh.Moltype() != this.Moltype {
		return false
	}
	if this.Containment && mh.Scaled() == 0 {
		return false
	}
	if this.Scaled != 0 && mh.Scaled() == 0 {
		return false
	}
	if this.Num != 0 && mh.Num() != this.Num {
		return false
	}
	return true
}

// Merge combines two selections for chained Select calls. Conflicting
// constraints cannot both hold, so they are an error rather than an empty
// view.
func (this Selection) Merge(other Selection) (Selection, error) {
	merged := this
	if other.Ksize != 0 {
		if merged.Ksize != 0 && merged.Ksize != other.Ksize {
			return Selection{}, IncompatibleSelectionErr
		}
		merged.Ksize = other.Ksize
	}
	if other.Moltype != "" {
		if merged.Moltype != "" && merged.Moltype != other.Moltype {
			return Selection{}, IncompatibleSelectionErr
		}
		merged.Moltype = other.Moltype
	}
	if other.Scaled != 0 {
		if merged.Scaled != 0 && merged.Scaled != other.Scaled {
			return Selection{}, IncompatibleSelectionErr
		}
		merged.Scaled = other.Scaled
	}
	if other.Num != 0 {
		if merged.Num != 0 && merged.Num != other.Num {
			return Selection{}, IncompatibleSelectionErr
		}
		merged.Num = other.Num
	}
	merged.Containment = merged.Containment || other.Containment
	return merged, nil
}
