package index

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sketchdb/sketchdb/signature"
)

// MultiIndex overlays several indexes behind one Index. Each sub-index pairs
// with a source string; a non-empty source overrides the locations the
// sub-index reports for its results.
type MultiIndex struct {
	indexes []Index
	sources []string
	parent  string
}

func NewMultiIndex(indexes []Index, sources []string) (*MultiIndex, error) {
	if len(indexes) != len(sources) {
		return nil, LengthMismatchErr
	}
	return &MultiIndex{
		indexes: indexes,
		sources: sources,
	}, nil
}

func (this *MultiIndex) Location() string {
	return this.parent
}

func (this *MultiIndex) Len() int {
	total := 0
	for _, idx := range this.indexes {
		total += idx.Len()
	}
	return total
}

func (this *MultiIndex) Signatures() SignatureIterator {
	return &multiIterator{indexes: this.indexes}
}

// SignaturesWithSource enumerates like Signatures but pairs every signature
// with the source of the sub-index it came from.
func (this *MultiIndex) SignaturesWithSource() *SourcedSignatureIterator {
	return &SourcedSignatureIterator{indexes: this.indexes, sources: this.sources}
}

func (this *MultiIndex) Insert(sig *signature.Signature) error {
	return ReadOnlyIndexErr
}

func (this *MultiIndex) Save(path string) error {
	return ReadOnlyIndexErr
}

// Select maps the selection over every sub-index, keeping sources aligned.
func (this *MultiIndex) Select(sel Selection) (Index, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	selected := make([]Index, 0, len(this.indexes))
	for _, idx := range this.indexes {
		sub, err := idx.Select(sel)
		if err != nil {
			return nil, err
		}
		selected = append(selected, sub)
	}
	return &MultiIndex{
		indexes: selected,
		sources: this.sources,
		parent:  this.parent,
	}, nil
}

// Filter maps the predicate over every sub-index. Sub-indexes without native
// filtering are materialized into LinearIndexes.
func (this *MultiIndex) Filter(pred func(*signature.Signature) bool) Index {
	filtered := make([]Index, 0, len(this.indexes))
	for _, idx := range this.indexes {
		if f, ok := idx.(Filterer); ok {
			filtered = append(filtered, f.Filter(pred))
			continue
		}
		kept := make([]*signature.Signature, 0)
		it := idx.Signatures()
		for sig, ok := it.Next(); ok; sig, ok = it.Next() {
			if pred(sig) {
				kept = append(kept, sig)
			}
		}
		filtered = append(filtered, NewLinearIndex(kept, idx.Location()))
	}
	return &MultiIndex{
		indexes: filtered,
		sources: this.sources,
		parent:  this.parent,
	}
}

// Search delegates to every sub-index and rewrites result locations: the
// recorded source wins, the sub-index report is the fallback.
func (this *MultiIndex) Search(query *signature.Signature, threshold float64, options ...SearchOption) (SearchResults, error) {
	results := make(SearchResults, 0)
	for i, idx := range this.indexes {
		sub, err := Search(idx, query, threshold, options...)
		if err != nil {
			return nil, err
		}
		for _, result := range sub {
			if this.sources[i] != "" {
				result.Location = this.sources[i]
			}
			results = append(results, result)
		}
	}
	sort.Stable(sort.Reverse(results))
	return results, nil
}

// Gather delegates like Search, with the same provenance rewrite.
func (this *MultiIndex) Gather(query *signature.Signature, thresholdBp uint64) (GatherResults, error) {
	results := make(GatherResults, 0)
	for i, idx := range this.indexes {
		sub, err := Gather(idx, query, thresholdBp)
		if err != nil {
			return nil, err
		}
		for _, result := range sub {
			if this.sources[i] != "" {
				result.Location = this.sources[i]
			}
			results = append(results, result)
		}
	}
	sort.Stable(sort.Reverse(results))
	return results, nil
}

// MultiIndexFromPath loads a signature file, or every signature file under a
// directory, one sub-index per file. With force, files with other suffixes
// are tried too and unloadable ones are skipped instead of failing the load.
func MultiIndexFromPath(path string, force bool) (*MultiIndex, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0)
	if info.IsDir() {
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			if force || strings.HasSuffix(p, ".sig") || strings.HasSuffix(p, ".sig.gz") {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		paths = append(paths, path)
	}

	indexes := make([]Index, 0, len(paths))
	sources := make([]string, 0, len(paths))
	for _, p := range paths {
		idx, err := LoadLinearIndex(p)
		if err != nil {
			if force {
				log.Warnf("Skipping %s: %v", p, err)
				continue
			}
			return nil, err
		}
		indexes = append(indexes, idx)
		sources = append(sources, p)
	}

	if len(indexes) == 0 {
		return nil, NoSignaturesFoundErr
	}
	return &MultiIndex{
		indexes: indexes,
		sources: sources,
		parent:  path,
	}, nil
}

// MultiIndexFromPathList loads every path named in a manifest file, one per
// line, resolving each through LoadIndex. Any failure fails the whole load.
func MultiIndexFromPathList(path string) (*MultiIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	indexes := make([]Index, 0)
	sources := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx, err := LoadIndex(line)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
		sources = append(sources, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &MultiIndex{
		indexes: indexes,
		sources: sources,
		parent:  path,
	}, nil
}

type multiIterator struct {
	indexes []Index
	pos     int
	current SignatureIterator
}

func (this *multiIterator) Next() (*signature.Signature, bool) {
	for {
		if this.current != nil {
			if sig, ok := this.current.Next(); ok {
				return sig, true
			}
			this.current = nil
		}
		if this.pos >= len(this.indexes) {
			return nil, false
		}
		this.current = this.indexes[this.pos].Signatures()
		this.pos++
	}
}

type SourcedSignatureIterator struct {
	indexes []Index
	sources []string
	pos     int
	current SignatureIterator
}

func (this *SourcedSignatureIterator) Next() (*signature.Signature, string, bool) {
	for {
		if this.current != nil {
			if sig, ok := this.current.Next(); ok {
				return sig, this.sources[this.pos-1], true
			}
			this.current = nil
		}
		if this.pos >= len(this.indexes) {
			return nil, "", false
		}
		this.current = this.indexes[this.pos].Signatures()
		this.pos++
	}
}
