package index

import (
	"runtime"
	"sort"
	"sync"

	"github.com/sketchdb/sketchdb/signature"
	"github.com/sketchdb/sketchdb/sketch"
)

type searchConfig struct {
	containment     bool
	maxContainment  bool
	ignoreAbundance bool
	numThreads      int
}

func newSearchConfig(options []SearchOption) *searchConfig {
	config := &searchConfig{
		containment:     false,
		maxContainment:  false,
		ignoreAbundance: false,
		numThreads:      runtime.NumCPU(),
	}
	for _, option := range options {
		option.apply(config)
	}
	return config
}

func (this *searchConfig) validate() error {
	if this.containment && this.maxContainment {
		return BothContainmentErr
	}
	return nil
}

func (this *searchConfig) scoreFn() func(query, candidate *sketch.MinHash) float64 {
	if this.maxContainment {
		return func(query, candidate *sketch.MinHash) float64 {
			return query.MaxContainment(candidate)
		}
	}
	if this.containment {
		return func(query, candidate *sketch.MinHash) float64 {
			return query.ContainedBy(candidate)
		}
	}
	ignoreAbundance := this.ignoreAbundance
	return func(query, candidate *sketch.MinHash) float64 {
		return query.Similarity(candidate, ignoreAbundance)
	}
}

type SearchOption interface {
	apply(*searchConfig)
}

type searchOption struct {
	applyFunc func(*searchConfig)
}

func (this *searchOption) apply(config *searchConfig) {
	this.applyFunc(config)
}

// SearchWithContainment scores candidates by the fraction of the query they
// contain instead of Jaccard similarity.
func SearchWithContainment() SearchOption {
	return &searchOption{
		applyFunc: func(config *searchConfig) {
			config.containment = true
		},
	}
}

func SearchWithMaxContainment() SearchOption {
	return &searchOption{
		applyFunc: func(config *searchConfig) {
			config.maxContainment = true
		},
	}
}

func SearchIgnoreAbundance() SearchOption {
	return &searchOption{
		applyFunc: func(config *searchConfig) {
			config.ignoreAbundance = true
		},
	}
}

func SearchNumThreads(n int) SearchOption {
	return &searchOption{
		applyFunc: func(config *searchConfig) {
			config.numThreads = n
		},
	}
}

// Find returns the signatures satisfying the match predicate, in enumeration
// order.
func Find(idx Index, match func(*signature.Signature) bool) []*signature.Signature {
	found := make([]*signature.Signature, 0)
	it := idx.Signatures()
	for sig, ok := it.Next(); ok; sig, ok = it.Next() {
		if match(sig) {
			found = append(found, sig)
		}
	}
	return found
}

// Search returns all signatures scoring at least threshold against the query,
// best first. Ties keep enumeration order. Results are tagged with the index
// location unless the index rewrites provenance itself.
func Search(idx Index, query *signature.Signature, threshold float64, options ...SearchOption) (SearchResults, error) {
	config := newSearchConfig(options)
	if err := config.validate(); err != nil {
		return nil, err
	}
	if searcher, ok := idx.(Searcher); ok {
		return searcher.Search(query, threshold, options...)
	}
	return searchScan(idx, query, threshold, config)
}

func searchScan(idx Index, query *signature.Signature, threshold float64, config *searchConfig) (SearchResults, error) {
	scoreFn := config.scoreFn()
	queryMh := query.Sketch()
	scored := scoreAll(idx.Signatures(), config.numThreads, func(sig *signature.Signature) float64 {
		return scoreFn(queryMh, sig.Sketch())
	})

	results := make(SearchResults, 0)
	for _, s := range scored {
		// Zero scores qualify at threshold zero; only gather demands a
		// nonzero overlap.
		if s.score >= threshold {
			results = append(results, SearchResult{
				Score:     s.score,
				Signature: s.sig,
				Location:  idx.Location(),
			})
		}
	}
	sort.Stable(sort.Reverse(results))
	return results, nil
}

// Gather returns every candidate containing at least thresholdBp worth of the
// query, ordered by containment. An empty query gathers nothing; non-scaled
// queries cannot express a base-pair threshold.
func Gather(idx Index, query *signature.Signature, thresholdBp uint64) (GatherResults, error) {
	if gatherer, ok := idx.(Gatherer); ok {
		return gatherer.Gather(query, thresholdBp)
	}
	return gatherScan(idx, query, thresholdBp, runtime.NumCPU())
}

func gatherScan(idx Index, query *signature.Signature, thresholdBp uint64, numThreads int) (GatherResults, error) {
	queryMh := query.Sketch()
	if queryMh.Len() == 0 {
		return GatherResults{}, nil
	}
	if queryMh.Scaled() == 0 {
		return nil, RequiresScaledErr
	}

	threshold, attainable := gatherThreshold(queryMh, thresholdBp)
	if !attainable {
		return GatherResults{}, nil
	}

	scored := scoreAll(idx.Signatures(), numThreads, func(sig *signature.Signature) float64 {
		return queryMh.ContainedBy(sig.Sketch())
	})

	results := make(GatherResults, 0)
	for _, s := range scored {
		if s.score > 0 && s.score >= threshold {
			results = append(results, GatherResult{
				Containment: s.score,
				Signature:   s.sig,
				Location:    idx.Location(),
			})
		}
	}
	sort.Stable(sort.Reverse(results))
	return results, nil
}

// CounterGather greedily decomposes the query: repeatedly take the candidate
// with the largest remaining overlap, then discount that overlap from every
// other candidate. The loop stops once the best remaining overlap falls below
// thresholdBp. Results are tagged with each candidate's own filename and a
// partial decomposition is valid output.
func CounterGather(idx Index, query *signature.Signature, thresholdBp uint64) (GatherResults, error) {
	queryMh := query.Sketch()
	if queryMh.Len() == 0 {
		return GatherResults{}, nil
	}
	if queryMh.Scaled() == 0 {
		return nil, RequiresScaledErr
	}

	threshold, attainable := gatherThreshold(queryMh, thresholdBp)
	if !attainable {
		return GatherResults{}, nil
	}
	nThresholdHashes := float64(thresholdBp) / float64(queryMh.Scaled())

	candidates := Collect(idx.Signatures())
	counted := scoreAll(newSliceIterator(candidates), runtime.NumCPU(), func(sig *signature.Signature) float64 {
		return float64(queryMh.CountCommon(sig.Sketch()))
	})

	// Zero-overlap candidates stay in play until the loop visits them; they
	// can never be emitted because their containment is zero.
	counts := make(map[int]int, len(counted))
	for _, c := range counted {
		counts[c.ordinal] = int(c.score)
	}

	results := make(GatherResults, 0)
	for len(counts) > 0 {
		best, bestCount := bestRemaining(counts)
		if float64(bestCount) < nThresholdHashes {
			break
		}

		chosen := candidates[best]
		containment := queryMh.ContainedBy(chosen.Sketch())
		if containment > 0 && containment >= threshold {
			results = append(results, GatherResult{
				Containment: containment,
				Signature:   chosen,
				Location:    chosen.Filename(),
			})
		}

		delete(counts, best)
		for ordinal := range counts {
			overlap := chosen.Sketch().CountCommon(candidates[ordinal].Sketch())
			if overlap > 0 {
				counts[ordinal] -= overlap
				if counts[ordinal] == 0 {
					delete(counts, ordinal)
				}
			}
		}
	}

	sort.Stable(sort.Reverse(results))
	return results, nil
}

// bestRemaining picks the largest count; ties go to the earliest enumerated
// candidate.
func bestRemaining(counts map[int]int) (int, int) {
	best, bestCount := -1, 0
	for ordinal, count := range counts {
		if best == -1 || count > bestCount || (count == bestCount && ordinal < best) {
			best = ordinal
			bestCount = count
		}
	}
	return best, bestCount
}

func gatherThreshold(queryMh *sketch.MinHash, thresholdBp uint64) (float64, bool) {
	nThresholdHashes := float64(thresholdBp) / float64(queryMh.Scaled())
	threshold := nThresholdHashes / float64(queryMh.Len())
	if threshold > 1.0 {
		return 0, false
	}
	return threshold, true
}

type scoredSignature struct {
	ordinal int
	sig     *signature.Signature
	score   float64
}

type scoredList []scoredSignature

func (this scoredList) Len() int {
	return len(this)
}

func (this scoredList) Swap(i, j int) {
	this[i], this[j] = this[j], this[i]
}

func (this scoredList) Less(i, j int) bool {
	return this[i].ordinal < this[j].ordinal
}

// scoreAll scores every signature from the iterator on a bounded worker pool.
// A single goroutine owns the iterator; results come back in enumeration
// order regardless of worker scheduling.
func scoreAll(it SignatureIterator, numThreads int, scoreFn func(*signature.Signature) float64) scoredList {
	if numThreads <= 1 {
		scored := make(scoredList, 0)
		ordinal := 0
		for sig, ok := it.Next(); ok; sig, ok = it.Next() {
			scored = append(scored, scoredSignature{ordinal, sig, scoreFn(sig)})
			ordinal++
		}
		return scored
	}

	jobs := make(chan scoredSignature)
	resultCh := make(chan scoredSignature)

	wg := &sync.WaitGroup{}
	for i := 0; i < numThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				job.score = scoreFn(job.sig)
				resultCh <- job
			}
		}()
	}

	go func() {
		ordinal := 0
		for sig, ok := it.Next(); ok; sig, ok = it.Next() {
			jobs <- scoredSignature{ordinal: ordinal, sig: sig}
			ordinal++
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	scored := make(scoredList, 0)
	for result := range resultCh {
		scored = append(scored, result)
	}
	sort.Sort(scored)
	return scored
}
