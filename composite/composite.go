// Package composite implements C12: the orchestrator tying every other
// output component to one simulated read stream.
//
// One Output owns exactly one instance of each writer/accumulator enabled
// by the run's model.Config.Outputs mask, and fans every accepted read out
// to all of them from a single call to AddRead/AddReadPair. A read's name
// is generated exactly once per logical read event (spec.md §4.12) and
// handed to every writer that needs it, rather than letting each writer
// consume the shared counter independently — see readname.Generator's
// NextName.
package composite

import (
	"context"

	"github.com/grailbio/base/errors"

	"github.com/grailbio/chipsim/bedio"
	"github.com/grailbio/chipsim/blockfile"
	"github.com/grailbio/chipsim/covmap"
	"github.com/grailbio/chipsim/densmap"
	"github.com/grailbio/chipsim/distio"
	"github.com/grailbio/chipsim/emitter"
	"github.com/grailbio/chipsim/fastqio"
	"github.com/grailbio/chipsim/model"
	"github.com/grailbio/chipsim/mutexset"
	"github.com/grailbio/chipsim/partition"
	"github.com/grailbio/chipsim/qcheck"
	"github.com/grailbio/chipsim/qualpattern"
	"github.com/grailbio/chipsim/readname"
	"github.com/grailbio/chipsim/samio"
)

// RunSummary reports end-of-run counters: a supplemented feature (not named
// by the distilled spec but natural for any simulator driver to want) that
// surfaces what AddRead/AddReadPair otherwise only return one call at a
// time.
type RunSummary struct {
	Accepted       int64
	OutOfRange     int64
	NLimitExceeded int64
}

// Output owns every enabled writer/accumulator for one run.
type Output struct {
	cfg   model.Config
	ctx   context.Context
	mutex *mutexset.Set
	gen   *readname.Generator
	qual  *qualpattern.Source

	fastq *fastqio.Writer
	bed   *bedio.Writer
	sam   *samio.Writer

	bgrEmitter    *emitter.Emitter
	bgrPosEmitter *emitter.Emitter
	bgrNegEmitter *emitter.Emitter
	fdensEmitter  *emitter.Emitter
	rdensEmitter  *emitter.Emitter
	fdistHist     *distio.Histogram
	rdistHist     *distio.Histogram
	fdistPath     string
	rdistPath     string

	curCov    *emitter.Chrom
	curCovPos *emitter.Chrom
	curCovNeg *emitter.Chrom
	curFdens  *emitter.Chrom
	curRdens  *emitter.Chrom
	curIndex  int
	curEntry  model.ChromEntry

	summary RunSummary

	closers []func() error
}

func artifactPath(base, suffix string, zipped bool) string {
	p := base + suffix
	if zipped {
		p += ".gz"
	}
	return p
}

// New opens every output artifact enabled by cfg.Outputs and returns the
// Output ready to BeginChromosome. chroms must be in canonical order. The
// length histograms are sized from cfg.VarMaxLen, or from cfg.FixedLen when
// VarMaxLen is 0; chroms does not affect them.
func New(ctx context.Context, cfg model.Config, chroms []model.ChromEntry, threaded bool) (*Output, error) {
	if err := partition.ValidateEntries(chroms); err != nil {
		return nil, err
	}

	o := &Output{
		cfg:   cfg,
		ctx:   ctx,
		mutex: mutexset.New(threaded),
	}
	maxLen := int(cfg.FixedLen)
	if cfg.VarMaxLen > 0 {
		maxLen = int(cfg.VarMaxLen)
	}
	maxChromMarkLen := 0
	for _, c := range chroms {
		if len(c.Name) > maxChromMarkLen {
			maxChromMarkLen = len(c.Name)
		}
	}
	maxCoord := uint32(0)
	for _, c := range chroms {
		if uint32(c.Length) > maxCoord {
			maxCoord = uint32(c.Length)
		}
	}
	o.gen = readname.NewGenerator(cfg.Tool, cfg.NamePolicy, maxChromMarkLen, maxCoord, maxCoord)

	if cfg.QualityPatternFile != "" {
		q, err := qualpattern.Load(ctx, cfg.QualityPatternFile, cfg.DefaultQualChar)
		if err != nil {
			return nil, err
		}
		o.qual = q
	} else {
		o.qual = qualpattern.NewConstant(cfg.DefaultQualChar)
	}

	opts := blockfile.Opts{Zipped: cfg.Zipped}

	if cfg.Outputs.Has(model.FG) {
		if cfg.Paired {
			bf1, err := o.open(artifactPath(cfg.OutputBase, "_1.fq", cfg.Zipped), opts, "fastq/1")
			if err != nil {
				return nil, err
			}
			bf2, err := o.open(artifactPath(cfg.OutputBase, "_2.fq", cfg.Zipped), opts, "fastq/2")
			if err != nil {
				return nil, err
			}
			o.fastq = fastqio.NewPairedEnd(bf1, bf2, o.qual)
		} else {
			bf, err := o.open(artifactPath(cfg.OutputBase, ".fq", cfg.Zipped), opts, "fastq")
			if err != nil {
				return nil, err
			}
			o.fastq = fastqio.NewSingleEnd(bf, o.qual)
		}
	}

	if cfg.Outputs.Has(model.BED) {
		bf, err := o.open(artifactPath(cfg.OutputBase, ".bed", cfg.Zipped), opts, "bed")
		if err != nil {
			return nil, err
		}
		o.bed = bedio.New(bf, cfg.MapQ)
	}

	if cfg.Outputs.Has(model.SAM) {
		bf, err := o.open(artifactPath(cfg.OutputBase, ".sam", cfg.Zipped), opts, "sam")
		if err != nil {
			return nil, err
		}
		if err := samio.WriteHeader(bf, cfg.Tool, cfg.Version, cfg.Cmdline, chroms); err != nil {
			return nil, err
		}
		o.sam = samio.New(bf, o.qual, cfg.MapQ)
	}

	if cfg.Outputs.Has(model.BGR) {
		bf, err := o.open(artifactPath(cfg.OutputBase, ".bg", cfg.Zipped), opts, "bedgraph")
		if err != nil {
			return nil, err
		}
		o.bgrEmitter = emitter.New("bedgraph", bf, o.mutex.Get("bedgraph"), len(chroms))
		// Emitter.Close drains its queue and then closes bf itself, so it
		// takes the place of the bf.Close that open registered.
		o.closers[len(o.closers)-1] = o.bgrEmitter.Close

		// Strand-separated coverage only makes sense for single-end runs:
		// a paired fragment's two mates disagree on strand by construction,
		// so there is no single strand to file the fragment's coverage
		// under.
		if cfg.StrandSplitBedgraph && !cfg.Paired {
			bfPos, err := o.open(artifactPath(cfg.OutputBase, "_pos.bg", cfg.Zipped), opts, "bedgraph/pos")
			if err != nil {
				return nil, err
			}
			o.bgrPosEmitter = emitter.New("bedgraph positive strand", bfPos, o.mutex.Get("bedgraph_pos"), len(chroms))
			o.closers[len(o.closers)-1] = o.bgrPosEmitter.Close

			bfNeg, err := o.open(artifactPath(cfg.OutputBase, "_neg.bg", cfg.Zipped), opts, "bedgraph/neg")
			if err != nil {
				return nil, err
			}
			o.bgrNegEmitter = emitter.New("bedgraph negative strand", bfNeg, o.mutex.Get("bedgraph_neg"), len(chroms))
			o.closers[len(o.closers)-1] = o.bgrNegEmitter.Close
		}
	}
	if cfg.Outputs.Has(model.FDENS) {
		bf, err := o.open(artifactPath(cfg.OutputBase, ".fdens", cfg.Zipped), opts, "fragment density")
		if err != nil {
			return nil, err
		}
		o.fdensEmitter = emitter.New("fragment density", bf, o.mutex.Get("fdens"), len(chroms))
		o.closers[len(o.closers)-1] = o.fdensEmitter.Close
	}
	if cfg.Outputs.Has(model.RDENS) {
		bf, err := o.open(artifactPath(cfg.OutputBase, ".rdens", cfg.Zipped), opts, "read density")
		if err != nil {
			return nil, err
		}
		o.rdensEmitter = emitter.New("read density", bf, o.mutex.Get("rdens"), len(chroms))
		o.closers[len(o.closers)-1] = o.rdensEmitter.Close
	}
	if cfg.Outputs.Has(model.FDIST) {
		o.fdistHist = distio.NewHistogram("fragment length", maxLen*2+1)
		o.fdistPath = cfg.OutputBase + ".fdist"
	}
	if cfg.Outputs.Has(model.RDIST) {
		o.rdistHist = distio.NewHistogram("read length", maxLen+1)
		o.rdistPath = cfg.OutputBase + ".rdist"
	}

	return o, nil
}

func (o *Output) open(path string, opts blockfile.Opts, family string) (*blockfile.BlockFile, error) {
	opts.Mutex = o.mutex.Get(family)
	bf, err := blockfile.New(o.ctx, path, opts)
	if err != nil {
		return nil, errors.E(err, "composite: open", family, path)
	}
	o.closers = append(o.closers, bf.Close)
	return bf, nil
}

// BeginChromosome starts accumulation for entry, whose canonical position
// in chromosome order is canonicalIndex.
func (o *Output) BeginChromosome(canonicalIndex int, entry model.ChromEntry) {
	o.curIndex = canonicalIndex
	o.curEntry = entry
	o.gen.SetChrom(entry.Name)
	if o.bed != nil {
		o.bed.SetChrom(entry.Name)
	}
	if o.sam != nil {
		o.sam.SetChrom(entry.Name)
	}
	if o.bgrEmitter != nil {
		o.curCov = emitter.NewBedgraphChrom(entry)
	}
	if o.bgrPosEmitter != nil {
		o.curCovPos = emitter.NewBedgraphChrom(entry)
	}
	if o.bgrNegEmitter != nil {
		o.curCovNeg = emitter.NewBedgraphChrom(entry)
	}
	if o.fdensEmitter != nil {
		o.curFdens = emitter.NewDensityChrom(entry)
	}
	if o.rdensEmitter != nil {
		o.curRdens = emitter.NewDensityChrom(entry)
	}
}

// EndChromosome releases the current chromosome's accumulators to their
// emitters for ordered output.
func (o *Output) EndChromosome() error {
	if o.bgrEmitter != nil {
		if err := o.bgrEmitter.Finish(o.curIndex, o.curCov); err != nil {
			return err
		}
	}
	if o.bgrPosEmitter != nil {
		if err := o.bgrPosEmitter.Finish(o.curIndex, o.curCovPos); err != nil {
			return err
		}
	}
	if o.bgrNegEmitter != nil {
		if err := o.bgrNegEmitter.Finish(o.curIndex, o.curCovNeg); err != nil {
			return err
		}
	}
	if o.fdensEmitter != nil {
		if err := o.fdensEmitter.Finish(o.curIndex, o.curFdens); err != nil {
			return err
		}
	}
	if o.rdensEmitter != nil {
		if err := o.rdensEmitter.Finish(o.curIndex, o.curRdens); err != nil {
			return err
		}
	}
	return nil
}

func (o *Output) recordAccumulators(frag model.Fragment, reads ...model.Read) {
	if o.curCov != nil {
		o.curCov.Cov.AddInterval(frag.Start, frag.End)
	}
	if o.curFdens != nil {
		o.curFdens.Dens.AddPoint(frag.Center())
	}
	if o.curRdens != nil {
		for _, r := range reads {
			o.curRdens.Dens.AddPoint(r.Pos)
		}
	}
	if o.fdistHist != nil {
		o.fdistHist.Record(int(frag.Len()))
	}
	if o.rdistHist != nil {
		for _, r := range reads {
			o.rdistHist.Record(int(r.Len))
		}
	}
}

// recordStrandCoverage adds frag to whichever of the two strand-separated
// bedgraph accumulators matches reverse, when strand-split bedgraph output
// is enabled. It is only ever called from AddRead: paired-end fragments
// have two mates that disagree on strand, so bgrPosEmitter/bgrNegEmitter
// are never constructed for a paired-end Config.
func (o *Output) recordStrandCoverage(frag model.Fragment, reverse bool) {
	if reverse {
		if o.curCovNeg != nil {
			o.curCovNeg.Cov.AddInterval(frag.Start, frag.End)
		}
		return
	}
	if o.curCovPos != nil {
		o.curCovPos.Cov.AddInterval(frag.Start, frag.End)
	}
}

// AddRead processes one single-end read drawn from frag. The accumulators
// (coverage, density, length distribution) are updated unconditionally,
// even when the read is rejected by the 'N' check, since they describe the
// fragment population being simulated rather than the sequencer's output
// (spec.md §4.12).
func (o *Output) AddRead(frag model.Fragment, r model.Read) (model.AddReadResult, error) {
	o.recordAccumulators(frag, r)
	o.recordStrandCoverage(frag, r.Reverse)

	if qcheck.NullRead(r.Seq) {
		o.summary.OutOfRange++
		return model.OutOfRange, nil
	}
	if qcheck.Count(r.Seq, o.cfg.LimitN).Exceeded {
		o.summary.NLimitExceeded++
		return model.NLimitExceeded, nil
	}

	name, _ := o.gen.NextName(frag)
	nameCopy := append([]byte(nil), name...)

	if o.fastq != nil {
		if err := o.fastq.WriteSingle(nameCopy, r); err != nil {
			return model.Accepted, err
		}
	}
	if o.bed != nil {
		if err := o.bed.WriteRead(nameCopy, r); err != nil {
			return model.Accepted, err
		}
	}
	if o.sam != nil {
		if err := o.sam.WriteSingle(nameCopy, r); err != nil {
			return model.Accepted, err
		}
	}
	o.summary.Accepted++
	return model.Accepted, nil
}

// AddReadPair processes one paired-end fragment's two mates.
func (o *Output) AddReadPair(frag model.Fragment, r1, r2 model.Read) (model.AddReadResult, error) {
	o.recordAccumulators(frag, r1, r2)

	if qcheck.NullRead(r1.Seq) || qcheck.NullRead(r2.Seq) {
		o.summary.OutOfRange++
		return model.OutOfRange, nil
	}
	if qcheck.Count(r1.Seq, o.cfg.LimitN).Exceeded || qcheck.Count(r2.Seq, o.cfg.LimitN).Exceeded {
		o.summary.NLimitExceeded++
		return model.NLimitExceeded, nil
	}

	name, _ := o.gen.NextName(frag)
	nameCopy := append([]byte(nil), name...)

	if o.fastq != nil {
		if err := o.fastq.WritePair(nameCopy, r1, r2); err != nil {
			return model.Accepted, err
		}
	}
	if o.bed != nil {
		if err := o.bed.WriteRead(append(append([]byte(nil), nameCopy...), '/', '1'), r1); err != nil {
			return model.Accepted, err
		}
		if err := o.bed.WriteRead(append(append([]byte(nil), nameCopy...), '/', '2'), r2); err != nil {
			return model.Accepted, err
		}
	}
	if o.sam != nil {
		if err := o.sam.WritePair(frag, nameCopy, r1, r2); err != nil {
			return model.Accepted, err
		}
	}
	o.summary.Accepted++
	return model.Accepted, nil
}

// Summary returns the run's accumulated AddRead/AddReadPair counters.
func (o *Output) Summary() RunSummary { return o.summary }

// Close flushes and closes every artifact this Output opened, then writes
// the distribution reports (if enabled). Distribution write failures are
// reported via warn rather than returned, per distio's contract.
func (o *Output) Close(warn distio.WarnFunc) error {
	var firstErr error
	for _, c := range o.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if o.fdistHist != nil {
		if err := distio.Write(o.ctx, o.fdistPath, o.fdistHist, warn); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if o.rdistHist != nil {
		if err := distio.Write(o.ctx, o.rdistPath, o.rdistHist, warn); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return errors.E(firstErr, "composite: close")
	}
	return nil
}
