package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"

	"gopkg.in/yaml.v3"
)

// BatchJob pairs one or more playlist URLs with the job configuration used
// to download them.
type BatchJob struct {
	URL  string   `yaml:"url"`
	URLs []string `yaml:"urls"`

	models.JobConfig `yaml:",inline"`
}

// SourceURLs returns the job's playlist URLs, combining the singular and
// plural keys.
func (b *BatchJob) SourceURLs() []string {
	urls := make([]string, 0, len(b.URLs)+1)
	if b.URL != "" {
		urls = append(urls, b.URL)
	}
	return append(urls, b.URLs...)
}

// batchDoc is the raw shape of a batch file. Jobs stay as yaml.Node so each
// can be decoded onto a copy of the defaults, overriding only the keys the
// job actually sets.
type batchDoc struct {
	Defaults yaml.Node   `yaml:"defaults"`
	Jobs     []yaml.Node `yaml:"jobs"`
}

// strictBatch mirrors batchDoc with concrete types, used only to reject
// unknown keys (the yaml.Node pass cannot see them).
type strictBatch struct {
	Defaults models.JobConfig `yaml:"defaults"`
	Jobs     []BatchJob       `yaml:"jobs"`
}

// ReadBatchFile parses a YAML batch file into fully resolved jobs. Per-job
// settings layer over the file's defaults block, which layers over program
// defaults.
func ReadBatchFile(path string) ([]BatchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&strictBatch{}); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid batch file %q: %w", path, err)
	}

	var doc batchDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid batch file %q: %w", path, err)
	}

	defaults := models.DefaultJobConfig()
	if !doc.Defaults.IsZero() {
		if err := doc.Defaults.Decode(&defaults); err != nil {
			return nil, fmt.Errorf("invalid defaults block in %q: %w", path, err)
		}
	}

	if len(doc.Jobs) == 0 {
		return nil, fmt.Errorf("batch file %q contains no jobs", path)
	}

	jobs := make([]BatchJob, 0, len(doc.Jobs))
	for i, node := range doc.Jobs {
		job := BatchJob{JobConfig: defaults}
		if err := node.Decode(&job); err != nil {
			return nil, fmt.Errorf("invalid job #%d in %q: %w", i+1, path, err)
		}
		if len(job.SourceURLs()) == 0 {
			return nil, fmt.Errorf("job #%d in %q has no url", i+1, path)
		}
		jobs = append(jobs, job)
	}

	logging.D(1, "Loaded %d job(s) from batch file %q", len(jobs), path)
	return jobs, nil
}
