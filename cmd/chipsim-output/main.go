// Command chipsim-output builds the composite output pipeline from its
// flags, opens whichever artifacts -outputs selects, and closes them again.
// It loads no reference FASTA and adds no fragments (the chromosome table
// it passes is empty), so the artifacts it creates hold no records.
// Fragment generation itself is out of scope (see DESIGN.md); this binary
// exercises the pipeline's construction and shutdown, not ChIP-seq
// simulation.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"v.io/x/lib/vlog"

	"github.com/grailbio/chipsim/composite"
	"github.com/grailbio/chipsim/model"
)

var (
	outputBase  = flag.String("output", "", "output file base name (required)")
	outputsFlag = flag.String("outputs", "fastq,bed,sam,bedgraph,fdensity,rdensity,fdist,rdist", "comma-separated artifact list")
	zipped      = flag.Bool("gzip", false, "gzip-compress every output that supports it")
	strandSplit = flag.Bool("strand-bedgraph", false, "additionally emit strand-separated _pos/_neg bedgraph files (single-end only)")
	paired      = flag.Bool("paired", false, "generate paired-end reads instead of single-end")
	fixedLen    = flag.Int("read-length", 36, "fixed read length")
	mapQ        = flag.Int("mapq", 255, "constant mapping quality written to BED/SAM")
	limitN      = flag.Int("limit-n", 0, "reject reads with more than this many 'N' bases; 0 disables")
	defaultQual = flag.String("default-qual", "I", "default Phred quality character")
	qualFile    = flag.String("quality-pattern", "", "optional file holding one quality pattern line")
	threads     = flag.Int("threads", 0, "worker thread count; 0 uses runtime.NumCPU()")
	toolName    = flag.String("tool", "chipsim", "tool name embedded in read names and the SAM @PG line")
)

func parseOutputs(s string) model.OutputBit {
	var mask model.OutputBit
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "fastq":
			mask |= model.FG
		case "bed":
			mask |= model.BED
		case "sam":
			mask |= model.SAM
		case "bedgraph":
			mask |= model.BGR
		case "fdensity":
			mask |= model.FDENS
		case "rdensity":
			mask |= model.RDENS
		case "fdist":
			mask |= model.FDIST
		case "rdist":
			mask |= model.RDIST
		case "":
		default:
			vlog.Fatalf("chipsim-output: unknown -outputs token %q", tok)
		}
	}
	return mask
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if *outputBase == "" {
		vlog.Fatalf("chipsim-output: -output is required")
	}
	if len(*defaultQual) != 1 {
		vlog.Fatalf("chipsim-output: -default-qual must be exactly one character")
	}

	nThreads := *threads
	if nThreads <= 0 {
		nThreads = runtime.NumCPU()
	}

	cfg := model.Config{
		Tool:                *toolName,
		Version:             version,
		Cmdline:             strings.Join(os.Args, " "),
		OutputBase:          *outputBase,
		Outputs:             parseOutputs(*outputsFlag),
		Zipped:              *zipped,
		StrandSplitBedgraph: *strandSplit,
		Paired:              model.Paired(*paired),
		NamePolicy:          model.CounterOnly,
		FixedLen:            uint16(*fixedLen),
		MapQ:                *mapQ,
		LimitN:              *limitN,
		QualityPatternFile:  *qualFile,
		DefaultQualChar:     (*defaultQual)[0],
		Threads:             nThreads,
	}

	log.Debug.Printf("chipsim-output: starting with config %+v", cfg)

	// The reference loader and fragment simulator are out of this
	// pipeline's scope (see DESIGN.md); a real driver would populate
	// chroms from a FASTA index before calling composite.New.
	chroms := []model.ChromEntry{}

	out, err := composite.New(context.Background(), cfg, chroms, nThreads > 1)
	if err != nil {
		vlog.Fatalf("chipsim-output: %v", err)
	}

	warn := func(format string, args ...interface{}) {
		log.Error.Printf(format, args...)
	}
	if err := out.Close(warn); err != nil {
		vlog.Fatalf("chipsim-output: %v", err)
	}

	summary := out.Summary()
	log.Debug.Printf("chipsim-output: accepted=%d out-of-range=%d n-limit-exceeded=%d",
		summary.Accepted, summary.OutOfRange, summary.NLimitExceeded)
}

// version is overridden at link time (-ldflags "-X main.version=...").
var version = "dev-" + strconv.Itoa(0)
