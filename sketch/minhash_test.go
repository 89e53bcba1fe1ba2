package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestScaled(t *testing.T, scaled uint64, hashes ...uint64) *MinHash {
	mh, err := NewScaledMinHash(31, DNA, scaled, false)
	assert.Nil(t, err)
	mh.AddMany(hashes)
	return mh
}

func newTestNum(t *testing.T, num uint32, hashes ...uint64) *MinHash {
	mh, err := NewNumMinHash(31, DNA, num, false)
	assert.Nil(t, err)
	mh.AddMany(hashes)
	return mh
}

func TestNewMinHashRejectsZeroParams(t *testing.T) {
	_, err := NewScaledMinHash(31, DNA, 0, false)
	assert.Equal(t, InvalidParamsErr, err)

	_, err = NewNumMinHash(31, DNA, 0, false)
	assert.Equal(t, InvalidParamsErr, err)

	_, err = FromHashes(31, DNA, 0, 0, nil, nil)
	assert.Equal(t, InvalidParamsErr, err)

	_, err = FromHashes(31, DNA, 1000, 500, nil, nil)
	assert.Equal(t, InvalidParamsErr, err)
}

func TestScaledMinHashDropsHashesAboveCap(t *testing.T) {
	// Cap for scaled=4 is (2^64-1)/4.
	mh := newTestScaled(t, 4, 100, 200, uint64(6000000000000000000))

	assert.Equal(t, 2, mh.Len())
	assert.Equal(t, []uint64{100, 200}, mh.Hashes())
}

func TestNumMinHashKeepsSmallest(t *testing.T) {
	mh := newTestNum(t, 3, 50, 10, 40, 30, 20)

	assert.Equal(t, 3, mh.Len())
	assert.Equal(t, []uint64{10, 20, 30}, mh.Hashes())

	mh.AddHash(5)
	assert.Equal(t, []uint64{5, 10, 20}, mh.Hashes())

	mh.AddHash(100)
	assert.Equal(t, []uint64{5, 10, 20}, mh.Hashes())
}

func TestAddHashDeduplicates(t *testing.T) {
	mh := newTestScaled(t, 1, 10, 10, 10, 20)

	assert.Equal(t, 2, mh.Len())
	assert.Equal(t, []uint64{10, 20}, mh.Hashes())
}

func TestFromHashesSortsAndDeduplicates(t *testing.T) {
	mh, err := FromHashes(31, DNA, 1, 0, []uint64{30, 10, 20, 10}, nil)
	assert.Nil(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, []uint64{10, 20, 30}, mh.Hashes())
}

func TestFromHashesAbundanceMismatch(t *testing.T) {
	_, err := FromHashes(31, DNA, 1, 0, []uint64{1, 2}, []uint32{1})
	assert.Equal(t, AbundanceMismatchErr, err)
}

func TestAbundanceTracking(t *testing.T) {
	mh, err := FromHashes(31, DNA, 1, 0, []uint64{10, 20, 10}, []uint32{1, 3, 2})
	assert.Nil(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, []uint64{10, 20}, mh.Hashes())
	assert.Equal(t, []uint32{3, 3}, mh.Abundances())
}

func TestJaccardSimilarity(t *testing.T) {
	a := newTestScaled(t, 1, 1, 2, 3, 4)
	b := newTestScaled(t, 1, 3, 4, 5, 6)

	assert.InDelta(t, 2.0/6.0, a.Similarity(b, false), 1e-9)
	assert.InDelta(t, a.Similarity(b, false), b.Similarity(a, false), 1e-9)
}

func TestSimilarityIncompatibleSketches(t *testing.T) {
	a := newTestScaled(t, 1, 1, 2, 3)
	b := newTestNum(t, 10, 1, 2, 3)
	c := newTestScaled(t, 1, 1, 2, 3)

	assert.Equal(t, 0.0, a.Similarity(b, false))
	assert.Equal(t, 0, a.CountCommon(b))

	other, err := NewScaledMinHash(21, DNA, 1, false)
	assert.Nil(t, err)
	other.AddMany([]uint64{1, 2, 3})
	assert.Equal(t, 0.0, c.Similarity(other, false))
}

func TestContainment(t *testing.T) {
	a := newTestScaled(t, 1, 1, 2, 3, 4)
	b := newTestScaled(t, 1, 3, 4, 5, 6, 7, 8)

	assert.InDelta(t, 0.5, a.ContainedBy(b), 1e-9)
	assert.InDelta(t, 2.0/6.0, b.ContainedBy(a), 1e-9)
	assert.InDelta(t, 2.0/6.0, a.Containment(b), 1e-9)
	assert.InDelta(t, 0.5, a.MaxContainment(b), 1e-9)
	assert.InDelta(t, 0.5, b.MaxContainment(a), 1e-9)
}

func TestContainmentEmptySketch(t *testing.T) {
	a := newTestScaled(t, 1)
	b := newTestScaled(t, 1, 1, 2, 3)

	assert.Equal(t, 0.0, a.ContainedBy(b))
	assert.Equal(t, 0.0, b.ContainedBy(a))
	assert.Equal(t, 0.0, a.Similarity(b, false))
}

func TestCountCommonDownsamplesScaled(t *testing.T) {
	big := uint64(6000000000000000000)

	a := newTestScaled(t, 2, 100, big)
	b := newTestScaled(t, 4, 100, big)

	// big is above the cap for scaled=4, so b never holds it and the
	// comparison happens at scaled=4.
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 1, a.CountCommon(b))
	assert.InDelta(t, 1.0, a.ContainedBy(b), 1e-9)
}

func TestCountCommonDownsamplesNum(t *testing.T) {
	a := newTestNum(t, 4, 1, 2, 3, 4)
	b := newTestNum(t, 2, 1, 5)

	assert.Equal(t, 1, a.CountCommon(b))
	assert.InDelta(t, 1.0/3.0, a.Similarity(b, false), 1e-9)
}

func TestAngularSimilarity(t *testing.T) {
	a, err := FromHashes(31, DNA, 1, 0, []uint64{1, 2}, []uint32{2, 1})
	assert.Nil(t, err)
	b, err := FromHashes(31, DNA, 1, 0, []uint64{1, 2}, []uint32{1, 2})
	assert.Nil(t, err)

	// cos = (2*1 + 1*2) / (sqrt(5)*sqrt(5)) = 0.8
	assert.InDelta(t, 0.590334, a.Similarity(b, false), 1e-5)
	assert.InDelta(t, 1.0, a.Similarity(b, true), 1e-9)
	assert.InDelta(t, 1.0, a.Similarity(a, false), 1e-9)
}

func TestFingerprint(t *testing.T) {
	a := newTestScaled(t, 1, 1, 2, 3)
	b := newTestScaled(t, 1, 3, 2, 1)
	c := newTestScaled(t, 1, 1, 2, 4)

	assert.Len(t, a.Fingerprint(), 32)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	other, err := NewScaledMinHash(21, DNA, 1, false)
	assert.Nil(t, err)
	other.AddMany([]uint64{1, 2, 3})
	assert.NotEqual(t, a.Fingerprint(), other.Fingerprint())

	a.AddHash(10)
	assert.NotEqual(t, b.Fingerprint(), a.Fingerprint())
}

func TestCopyIsIndependent(t *testing.T) {
	a, err := FromHashes(31, DNA, 1, 0, []uint64{1, 2}, []uint32{1, 1})
	assert.Nil(t, err)
	if err != nil {
		return
	}

	b := a.Copy()
	a.AddHashWithAbundance(3, 5)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []uint32{1, 1}, b.Abundances())
}
