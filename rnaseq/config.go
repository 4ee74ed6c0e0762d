// Package rnaseq orchestrates the external tools that take raw RNAseq reads
// to counted genomic features: hisat2 for alignment, samtools for sam→bam
// conversion and sorting, and featureCounts for feature counting. The tools
// must be installed and reachable on the system; this package is sequential
// glue around them, driven by a configuration file.
package rnaseq

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Config defines the input files and parameters for one processing run.
type Config struct {
	// InputRawSequenceReads lists the raw .fq files to process.
	InputRawSequenceReads []string `json:"input_raw_sequence_reads" yaml:"input_raw_sequence_reads"`
	// MaxCPUThreads is passed to every tool that accepts a thread count.
	MaxCPUThreads int `json:"max_cpu_threads" yaml:"max_cpu_threads"`
	// Hisat2IndexFilenamePrefix is the genome index prefix for hisat2 -x.
	Hisat2IndexFilenamePrefix string `json:"hisat2_index_filename_prefix" yaml:"hisat2_index_filename_prefix"`
	// FeatureCountsGTFAnnotationFile is the GTF annotation for featureCounts -a.
	FeatureCountsGTFAnnotationFile string `json:"featureCounts_gtf_annotation_file" yaml:"featurecounts_gtf_annotation_file"`
	// GzipFqAfterAlignment gzips then removes each .fq file once aligned.
	GzipFqAfterAlignment bool `json:"gzip_fq_after_alignment" yaml:"gzip_fq_after_alignment"`
	// RmSamAfterConverting removes each .sam file once converted to .bam.
	RmSamAfterConverting bool `json:"rm_sam_after_converting" yaml:"rm_sam_after_converting"`
	// RmBamAfterSorting removes each unsorted .bam file once sorted.
	RmBamAfterSorting bool `json:"rm_bam_after_sorting" yaml:"rm_bam_after_sorting"`
	// StepTimeout bounds each external tool invocation, as a human duration
	// string ("90m", "2h"). Empty means no timeout.
	StepTimeout string `json:"step_timeout,omitempty" yaml:"step_timeout,omitempty"`
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if len(c.InputRawSequenceReads) == 0 {
		return errors.New("rnaseq: config has no input_raw_sequence_reads")
	}
	if c.MaxCPUThreads < 1 {
		return errors.Newf("rnaseq: max_cpu_threads must be at least 1, got %d", c.MaxCPUThreads)
	}
	if c.Hisat2IndexFilenamePrefix == "" {
		return errors.New("rnaseq: config is missing hisat2_index_filename_prefix")
	}
	if c.FeatureCountsGTFAnnotationFile == "" {
		return errors.New("rnaseq: config is missing featureCounts_gtf_annotation_file")
	}
	if _, err := c.stepTimeout(); err != nil {
		return err
	}
	return nil
}

func (c *Config) stepTimeout() (time.Duration, error) {
	if c.StepTimeout == "" {
		return 0, nil
	}
	d, err := str2duration.ParseDuration(c.StepTimeout)
	if err != nil {
		return 0, errors.Wrapf(err, "rnaseq: invalid step_timeout %q", c.StepTimeout)
	}
	return d, nil
}

// LoadConfig reads and validates a configuration file. YAML is accepted for
// .yaml/.yml extensions, JSON otherwise. The file must exist.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Newf("rnaseq: configuration file %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "rnaseq: read configuration file %s", path)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, &cfg)
	default:
		err = json.Unmarshal(buf, &cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "rnaseq: parse configuration file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SampleConfig returns a template configuration to be edited by the user.
func SampleConfig() *Config {
	return &Config{
		InputRawSequenceReads: []string{
			"ctl_A_1.fq", "ctl_A_2.fq", "ctl_B_1.fq", "ctl_B_2.fq",
			"trt_C_1.fq", "trt_C_2.fq", "trt_D_1.fq", "trt_D_2.fq",
		},
		MaxCPUThreads:                  16,
		Hisat2IndexFilenamePrefix:      "index/genome",
		FeatureCountsGTFAnnotationFile: "annotation.gtf",
		GzipFqAfterAlignment:           true,
		RmSamAfterConverting:           true,
		RmBamAfterSorting:              true,
	}
}

// WriteSampleConfig writes SampleConfig as indented JSON to path.
func WriteSampleConfig(path string) error {
	buf, err := json.MarshalIndent(SampleConfig(), "", "    ")
	if err != nil {
		return errors.Wrap(err, "rnaseq: encode sample config")
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrapf(err, "rnaseq: write sample config %s", path)
	}
	return nil
}
