package rnaseq

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dylanhross/dhr-util/logger"
)

// MinAlignmentRate is the overall alignment rate floor, in percent. An input
// aligning below it aborts the run so a bad library prep is caught early.
const MinAlignmentRate = 70.0

var alignRatePattern = regexp.MustCompile(`([0-9]+[.][0-9]+)% overall alignment rate`)

// Pipeline runs the alignment and feature-counting steps for all configured
// samples, in order, stopping at the first failure. There are no retries.
type Pipeline struct {
	cfg           *Config
	log           logger.Logger
	runner        Runner
	hisat2        string
	samtools      string
	featureCounts string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRunner substitutes the command runner. Used by tests.
func WithRunner(r Runner) PipelineOption {
	return func(p *Pipeline) { p.runner = r }
}

// WithToolPaths overrides the executable paths for the external tools.
func WithToolPaths(hisat2, samtools, featureCounts string) PipelineOption {
	return func(p *Pipeline) {
		p.hisat2 = hisat2
		p.samtools = samtools
		p.featureCounts = featureCounts
	}
}

// NewPipeline returns a Pipeline for cfg. The configuration must have been
// validated already (LoadConfig does this).
func NewPipeline(cfg *Config, log logger.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:           cfg,
		log:           log,
		runner:        execRunner{},
		hisat2:        "hisat2",
		samtools:      "samtools",
		featureCounts: "featureCounts",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs the full sequence: align every input with hisat2, convert the
// resulting .sam files to .bam, sort them, then count features across all
// samples with featureCounts.
func (p *Pipeline) Run(ctx context.Context) error {
	sams, err := p.alignReads(ctx)
	if err != nil {
		return err
	}
	bams, err := p.convertSams(ctx, sams)
	if err != nil {
		return err
	}
	sorted, err := p.sortBams(ctx, bams)
	if err != nil {
		return err
	}
	return p.countFeatures(ctx, sorted)
}

func (p *Pipeline) stepCtx(parent context.Context) (context.Context, context.CancelFunc) {
	d, err := p.cfg.stepTimeout()
	if err != nil || d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "."); i > 0 {
		return path[:i]
	}
	return path
}

func (p *Pipeline) threads() string {
	return strconv.Itoa(p.cfg.MaxCPUThreads)
}

// alignReads aligns every input .fq to the reference genome with hisat2,
// writing the alignment report to <base>.align.log per input. Returns the
// output .sam files.
func (p *Pipeline) alignReads(ctx context.Context) ([]string, error) {
	p.log.Info("aligning raw reads to genome using hisat2 ...")
	var sams []string
	for _, inputFq := range p.cfg.InputRawSequenceReads {
		base := baseName(inputFq)
		outputSam := base + ".sam"
		logFile := base + ".align.log"
		args := []string{
			"-q", "-p", p.threads(), "--pen-noncansplice", "1000000",
			"-x", p.cfg.Hisat2IndexFilenamePrefix,
			"-1", inputFq, "-2", inputFq, "-S", outputSam,
		}
		sctx, cancel := p.stepCtx(ctx)
		stdout, err := p.runner.Output(sctx, p.hisat2, args...)
		cancel()
		if err != nil {
			return nil, errors.Wrapf(err, "rnaseq: align %s", inputFq)
		}
		m := alignRatePattern.FindStringSubmatch(stdout)
		if m == nil {
			return nil, errors.Newf("rnaseq: no overall alignment rate in hisat2 output for %s", inputFq)
		}
		rate, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "rnaseq: parse alignment rate for %s", inputFq)
		}
		if rate < MinAlignmentRate {
			return nil, errors.Newf("rnaseq: alignment rate of %.2f%% is below %.0f%% threshold (%s)", rate, MinAlignmentRate, inputFq)
		}
		p.log.Info("aligned %s, alignment rate: %.2f%%", inputFq, rate)
		report := p.hisat2 + " " + strings.Join(args, " ") + "\n" + stdout
		if err := os.WriteFile(logFile, []byte(report), 0o644); err != nil {
			return nil, errors.Wrapf(err, "rnaseq: write alignment log %s", logFile)
		}
		sams = append(sams, outputSam)
		if p.cfg.GzipFqAfterAlignment {
			p.log.Debug("gzipping %s", inputFq)
			if err := gzipAndRemove(inputFq); err != nil {
				return nil, err
			}
		}
	}
	p.log.Info("... done")
	return sams, nil
}

// convertSams converts each .sam to the compact binary .bam format with
// samtools view. Returns the output .bam files.
func (p *Pipeline) convertSams(ctx context.Context, sams []string) ([]string, error) {
	p.log.Info("converting .sam files to .bam files using samtools view ...")
	var bams []string
	for _, inputSam := range sams {
		outputBam := baseName(inputSam) + ".bam"
		f, err := os.Create(outputBam)
		if err != nil {
			return nil, errors.Wrapf(err, "rnaseq: create %s", outputBam)
		}
		sctx, cancel := p.stepCtx(ctx)
		err = p.runner.Stream(sctx, f, p.samtools, "view", "-b", "--threads", p.threads(), inputSam)
		cancel()
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, errors.Wrapf(err, "rnaseq: convert %s", inputSam)
		}
		p.log.Debug("converted %s", inputSam)
		bams = append(bams, outputBam)
		if p.cfg.RmSamAfterConverting {
			p.log.Debug("removing %s", inputSam)
			if err := os.Remove(inputSam); err != nil {
				return nil, errors.Wrapf(err, "rnaseq: remove %s", inputSam)
			}
		}
	}
	p.log.Info("... done")
	return bams, nil
}

// sortBams sorts each .bam with samtools sort. Returns the sorted files.
func (p *Pipeline) sortBams(ctx context.Context, bams []string) ([]string, error) {
	p.log.Info("sorting .bam files using samtools sort ...")
	var sorted []string
	for _, inputBam := range bams {
		outputBam := baseName(inputBam) + ".sort.bam"
		sctx, cancel := p.stepCtx(ctx)
		err := p.runner.Stream(sctx, io.Discard, p.samtools, "sort", "-b", "--threads", p.threads(), inputBam, "-o", outputBam)
		cancel()
		if err != nil {
			return nil, errors.Wrapf(err, "rnaseq: sort %s", inputBam)
		}
		p.log.Debug("sorted %s", inputBam)
		sorted = append(sorted, outputBam)
		if p.cfg.RmBamAfterSorting {
			p.log.Debug("removing %s", inputBam)
			if err := os.Remove(inputBam); err != nil {
				return nil, errors.Wrapf(err, "rnaseq: remove %s", inputBam)
			}
		}
	}
	p.log.Info("... done")
	return sorted, nil
}

// countFeatures runs featureCounts once across all sorted .bam files,
// producing features.txt (the counts) and features.log (the tool output).
func (p *Pipeline) countFeatures(ctx context.Context, sorted []string) error {
	p.log.Info("running featureCounts on all samples ...")
	args := []string{
		"-p", "-t", "exon",
		"-a", p.cfg.FeatureCountsGTFAnnotationFile,
		"-g", "gene_name", "-T", p.threads(),
		"-o", "features.txt",
	}
	args = append(args, sorted...)
	f, err := os.Create("features.log")
	if err != nil {
		return errors.Wrap(err, "rnaseq: create features.log")
	}
	fmt.Fprintf(f, "%s %s\n", p.featureCounts, strings.Join(args, " "))
	sctx, cancel := p.stepCtx(ctx)
	err = p.runner.Stream(sctx, f, p.featureCounts, args...)
	cancel()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "rnaseq: count features")
	}
	p.log.Info("... done")
	return nil
}

// gzipAndRemove gzips path to path.gz then removes the original.
func gzipAndRemove(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "rnaseq: open %s", path)
	}
	defer src.Close()
	dst, err := os.Create(path + ".gz")
	if err != nil {
		return errors.Wrapf(err, "rnaseq: create %s.gz", path)
	}
	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		dst.Close()
		return errors.Wrapf(err, "rnaseq: gzip %s", path)
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		return errors.Wrapf(err, "rnaseq: gzip %s", path)
	}
	if err := dst.Close(); err != nil {
		return errors.Wrapf(err, "rnaseq: gzip %s", path)
	}
	src.Close()
	return errors.Wrapf(os.Remove(path), "rnaseq: remove %s", path)
}
