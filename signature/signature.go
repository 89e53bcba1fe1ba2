package signature

import (
	"fmt"

	"github.com/sketchdb/sketchdb/sketch"
)

// Signature names a sketch and remembers where it came from. The constructor
// copies the sketch, so a stored signature does not change when the caller
// keeps mutating the original.
type Signature struct {
	name     string
	filename string
	sketch   *sketch.MinHash
}

func New(name, filename string, mh *sketch.MinHash) *Signature {
	return &Signature{
		name:     name,
		filename: filename,
		sketch:   mh.Copy(),
	}
}

func (this *Signature) Name() string {
	return this.name
}

func (this *Signature) Filename() string {
	return this.filename
}

func (this *Signature) Sketch() *sketch.MinHash {
	return this.sketch
}

func (this *Signature) Fingerprint() string {
	return this.sketch.Fingerprint()
}

func (this *Signature) Equal(other *Signature) bool {
	if other == nil {
		return false
	}
	return this.name == other.name &&
		this.filename == other.filename &&
		this.Fingerprint() == other.Fingerprint()
}

func (this *Signature) String() string {
	return fmt.Sprintf("Signature(%q, %s)", this.name, this.Fingerprint()[:8])
}
