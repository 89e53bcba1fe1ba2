package main

import (
	"os";
	"flag";
	"context";
	"time";
	"math/rand";
	"runtime";
	"sync/atomic";

	"github.com/sketchdb/sketchdb/index";
	"github.com/sketchdb/sketchdb/signature";
	"github.com/sketchdb/sketchdb/sketch";

	"github.com/shirou/gopsutil/process";
	uuid "github.com/satori/go.uuid";
	log "github.com/sirupsen/logrus";
)

var gathers uint64 = 0

func randomSignature(size int, hashSpace uint64) *signature.Signature {
	mh, err := sketch.NewScaledMinHash(31, sketch.DNA, 1, false)
	if err != nil {
		log.Fatal(err)
	}
	for i := 0; i < size; i++ {
		mh.AddHash(uint64(rand.Int63n(int64(hashSpace))))
	}
	return signature.New(uuid.NewV4().String(), "", mh)
}

func worker(ctx context.Context, idx index.Index, queries <- chan *signature.Signature, thresholdBp uint64) {
	for {
		select {
		case query := <- queries:
			_, err := index.CounterGather(idx, query, thresholdBp)
			if err == nil {
				atomic.AddUint64(&gathers, 1)
			}
		case <- ctx.Done():
			return
		}
	}
}

func main() {
	datasetSize := flag.Int("dataset-size", 1000, "Number of stored signatures")
	sketchSize := flag.Int("sketch-size", 500, "Hashes per signature")
	n := flag.Int("n", 200, "Number of gather queries")
	thresholdBp := flag.Uint64("threshold-bp", 10, "Gather threshold")
	flag.Parse()

	// Draw hashes from a bounded space so stored signatures overlap the
	// queries often enough to exercise the greedy loop.
	hashSpace := uint64(*sketchSize) * 20

	sigs := make([]*signature.Signature, 0, *datasetSize)
	for i := 0; i < *datasetSize; i++ {
		sigs = append(sigs, randomSignature(*sketchSize, hashSpace))
	}
	idx := index.NewLinearIndex(sigs, "benchmark")
	log.Infof("Dataset: %d signatures, %d hashes each", idx.Len(), *sketchSize)

	ctx, cancel := context.WithCancel(context.Background())
	queries := make(chan *signature.Signature)
	for i := 0; i < runtime.NumCPU(); i++ {
		go worker(ctx, idx, queries, *thresholdBp)
	}

	startAt := time.Now()
	for i := 0; i < *n; i++ {
		queries <- randomSignature(*sketchSize, hashSpace)
	}

	for int(atomic.LoadUint64(&gathers)) < *n {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	log.Infof("Gathers: %d", atomic.LoadUint64(&gathers))
	log.Infof("OPs/s: %.2f", float64(*n) / float64(time.Since(startAt).Seconds()))

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Fatal(err)
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("RSS: %.2f MB", float64(memInfo.RSS) / (1024 * 1024))
}
