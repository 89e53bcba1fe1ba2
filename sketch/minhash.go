package sketch

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"sort"
)

type Moltype string

const (
	DNA     Moltype = "DNA"
	Protein Moltype = "protein"
	Dayhoff Moltype = "dayhoff"
	HP      Moltype = "hp"
)

var (
	InvalidParamsErr     error = errors.New("Exactly one of scaled and num must be set")
	AbundanceMismatchErr error = errors.New("Abundances do not match hashes")
)

// MinHash is a bottom sketch over a hashed sequence. Hashes are kept sorted
// ascending. A sketch is either scaled (keeps every hash at or below a cap
// derived from the scaled factor) or num (keeps the num smallest hashes).
// Hashes enter through AddHash; k-mer extraction and hashing happen upstream.
type MinHash struct {
	ksize          uint32
	moltype        Moltype
	scaled         uint64
	num            uint32
	trackAbundance bool

	hashes      []uint64
	abundances  map[uint64]uint32
	fingerprint string
}

func NewScaledMinHash(ksize uint32, moltype Moltype, scaled uint64, trackAbundance bool) (*MinHash, error) {
	if scaled == 0 {
		return nil, InvalidParamsErr
	}
	return newMinHash(ksize, moltype, scaled, 0, trackAbundance), nil
}

func NewNumMinHash(ksize uint32, moltype Moltype, num uint32, trackAbundance bool) (*MinHash, error) {
	if num == 0 {
		return nil, InvalidParamsErr
	}
	return newMinHash(ksize, moltype, 0, num, trackAbundance), nil
}

// FromHashes builds a sketch wholesale. Hashes may arrive unsorted and with
// duplicates; abundances, when given, are parallel to hashes.
func FromHashes(ksize uint32, moltype Moltype, scaled uint64, num uint32, hashes []uint64, abundances []uint32) (*MinHash, error) {
	if (scaled == 0) == (num == 0) {
		return nil, InvalidParamsErr
	}
	if abundances != nil && len(abundances) != len(hashes) {
		return nil, AbundanceMismatchErr
	}

	mh := newMinHash(ksize, moltype, scaled, num, abundances != nil)
	if abundances != nil {
		for i, h := range hashes {
			mh.AddHashWithAbundance(h, abundances[i])
		}
	} else {
		mh.AddMany(hashes)
	}
	return mh, nil
}

func newMinHash(ksize uint32, moltype Moltype, scaled uint64, num uint32, trackAbundance bool) *MinHash {
	mh := &MinHash{
		ksize:          ksize,
		moltype:        moltype,
		scaled:         scaled,
		num:            num,
		trackAbundance: trackAbundance,
		hashes:         make([]uint64, 0),
	}
	if trackAbundance {
		mh.abundances = make(map[uint64]uint32)
	}
	return mh
}

func (this *MinHash) Ksize() uint32 {
	return this.ksize
}

func (this *MinHash) Moltype() Moltype {
	return this.moltype
}

func (this *MinHash) Scaled() uint64 {
	return this.scaled
}

func (this *MinHash) Num() uint32 {
	return this.num
}

func (this *MinHash) Len() int {
	return len(this.hashes)
}

func (this *MinHash) TrackAbundance() bool {
	return this.trackAbundance
}

func (this *MinHash) Hashes() []uint64 {
	hashes := make([]uint64, len(this.hashes))
	copy(hashes, this.hashes)
	return hashes
}

// Abundances returns counts parallel to Hashes, or nil when the sketch does
// not track abundance.
func (this *MinHash) Abundances() []uint32 {
	if !this.trackAbundance {
		return nil
	}
	abundances := make([]uint32, len(this.hashes))
	for i, h := range this.hashes {
		abundances[i] = this.abundances[h]
	}
	return abundances
}

func (this *MinHash) Copy() *MinHash {
	mh := newMinHash(this.ksize, this.moltype, this.scaled, this.num, this.trackAbundance)
	mh.hashes = append(mh.hashes, this.hashes...)
	if this.trackAbundance {
		for h, count := range this.abundances {
			mh.abundances[h] = count
		}
	}
	mh.fingerprint = this.fingerprint
	return mh
}

func (this *MinHash) AddHash(h uint64) {
	this.AddHashWithAbundance(h, 1)
}

// AddHashWithAbundance inserts a hash subject to the sampling policy. Adding
// an existing hash bumps its abundance. On sketches without abundance
// tracking the abundance argument is ignored.
func (this *MinHash) AddHashWithAbundance(h uint64, abundance uint32) {
	if this.scaled > 0 && h > maxHashForScaled(this.scaled) {
		return
	}

	i := sort.Search(len(this.hashes), func(i int) bool { return this.hashes[i] >= h })
	if i < len(this.hashes) && this.hashes[i] == h {
		if this.trackAbundance {
			this.abundances[h] += abundance
		}
		return
	}

	if this.num > 0 && uint32(len(this.hashes)) == this.num {
		// Bottom-num sketch is full. Only a smaller hash displaces the largest.
		if h >= this.hashes[len(this.hashes)-1] {
			return
		}
		dropped := this.hashes[len(this.hashes)-1]
		this.hashes = this.hashes[:len(this.hashes)-1]
		if this.trackAbundance {
			delete(this.abundances, dropped)
		}
	}

	this.hashes = append(this.hashes, 0)
	copy(this.hashes[i+1:], this.hashes[i:])
	this.hashes[i] = h
	if this.trackAbundance {
		this.abundances[h] += abundance
	}
	this.fingerprint = ""
}

func (this *MinHash) AddMany(hashes []uint64) {
	for _, h := range hashes {
		this.AddHash(h)
	}
}

// Fingerprint is a hex digest over ksize and hash content. Abundances do not
// contribute, so two sketches with the same hashes share a fingerprint.
func (this *MinHash) Fingerprint() string {
	if this.fingerprint == "" {
		digest := md5.New()
		var b [8]byte
		binary.BigEndian.PutUint32(b[:4], this.ksize)
		digest.Write(b[:4])
		for _, h := range this.hashes {
			binary.BigEndian.PutUint64(b[:], h)
			digest.Write(b[:])
		}
		this.fingerprint = hex.EncodeToString(digest.Sum(nil))
	}
	return this.fingerprint
}

// CountCommon returns the intersection size after downsampling both sketches
// to the coarser common resolution. Sketches with different ksize, moltype or
// sampling policy have nothing in common.
func (this *MinHash) CountCommon(other *MinHash) int {
	if !this.compatible(other) {
		return 0
	}
	a, b := this.comparableHashes(other)
	return intersectCount(a, b)
}

// Similarity is the Jaccard similarity of the two hash sets. When both
// sketches track abundance and ignoreAbundance is false it is the angular
// similarity of the abundance vectors instead.
func (this *MinHash) Similarity(other *MinHash, ignoreAbundance bool) float64 {
	if !this.compatible(other) {
		return 0
	}
	a, b := this.comparableHashes(other)
	if this.trackAbundance && other.trackAbundance && !ignoreAbundance {
		return this.angularSimilarity(other, a, b)
	}

	intersect := intersectCount(a, b)
	union := len(a) + len(b) - intersect
	if union == 0 {
		return 0
	}
	return float64(intersect) / float64(union)
}

// ContainedBy returns the fraction of this sketch found in other.
func (this *MinHash) ContainedBy(other *MinHash) float64 {
	if !this.compatible(other) {
		return 0
	}
	a, b := this.comparableHashes(other)
	if len(a) == 0 {
		return 0
	}
	return float64(intersectCount(a, b)) / float64(len(a))
}

// Containment returns the fraction of other found in this sketch.
func (this *MinHash) Containment(other *MinHash) float64 {
	if !this.compatible(other) {
		return 0
	}
	a, b := this.comparableHashes(other)
	if len(b) == 0 {
		return 0
	}
	return float64(intersectCount(a, b)) / float64(len(b))
}

func (this *MinHash) MaxContainment(other *MinHash) float64 {
	if !this.compatible(other) {
		return 0
	}
	a, b := this.comparableHashes(other)
	min := len(a)
	if len(b) < min {
		min = len(b)
	}
	if min == 0 {
		return 0
	}
	return float64(intersectCount(a, b)) / float64(min)
}

func (this *MinHash) compatible(other *MinHash) bool {
	if this.ksize != other.ksize || this.moltype != other.moltype {
		return false
	}
	return (this.scaled > 0) == (other.scaled > 0)
}

// comparableHashes downsamples both hash sets to the coarser common
// resolution: the larger scaled factor, or the smaller num.
func (this *MinHash) comparableHashes(other *MinHash) ([]uint64, []uint64) {
	if this.scaled > 0 {
		scaled := this.scaled
		if other.scaled > scaled {
			scaled = other.scaled
		}
		maxHash := maxHashForScaled(scaled)
		return prefixBelow(this.hashes, maxHash), prefixBelow(other.hashes, maxHash)
	}

	num := this.num
	if other.num < num {
		num = other.num
	}
	a, b := this.hashes, other.hashes
	if uint32(len(a)) > num {
		a = a[:num]
	}
	if uint32(len(b)) > num {
		b = b[:num]
	}
	return a, b
}

func (this *MinHash) angularSimilarity(other *MinHash, a, b []uint64) float64 {
	var prod, normA, normB float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			prod += float64(this.abundances[a[i]]) * float64(other.abundances[b[j]])
			i++
			j++
		} else if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	for _, h := range a {
		v := float64(this.abundances[h])
		normA += v * v
	}
	for _, h := range b {
		v := float64(other.abundances[h])
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := prod / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos > 1.0 {
		cos = 1.0
	}
	return 1.0 - 2.0*math.Acos(cos)/math.Pi
}

func maxHashForScaled(scaled uint64) uint64 {
	return math.MaxUint64 / scaled
}

func prefixBelow(hashes []uint64, maxHash uint64) []uint64 {
	n := sort.Search(len(hashes), func(i int) bool { return hashes[i] > maxHash })
	return hashes[:n]
}

func intersectCount(a, b []uint64) int {
	count, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			count++
			i++
			j++
		} else if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return count
}
