package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/helios-data/helios/internal/llm"
	"github.com/helios-data/helios/internal/schema"
)

// Job is one manifest entry. Unset fields inherit the base options.
type Job struct {
	Path       string `yaml:"path"`
	Provider   string `yaml:"provider"`
	UseLLM     *bool  `yaml:"use_llm"`
	SchemaMode string `yaml:"schema_mode"`
}

// LoadManifest parses a YAML manifest: a list of jobs.
func LoadManifest(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var jobs []Job
	if err := yaml.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("manifest %s lists no jobs", path)
	}
	for i, job := range jobs {
		if job.Path == "" {
			return nil, fmt.Errorf("manifest %s: job %d has no path", path, i+1)
		}
	}
	return jobs, nil
}

// RunManifest converts every job concurrently. All jobs share the schema
// resolver, so resolved columns are cached once across the batch.
// Results are ordered like the manifest; a slot stays zero when its job
// failed.
func RunManifest(ctx context.Context, jobs []Job, base Options, resolver *schema.Resolver, translator llm.Translator, history History, logger *slog.Logger) ([]PathResult, error) {
	results := make([]PathResult, len(jobs))

	eg, egctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			opts := base
			if job.Provider != "" {
				opts.Provider = job.Provider
			}
			if job.UseLLM != nil {
				opts.UseLLM = *job.UseLLM
			}
			if job.SchemaMode != "" {
				mode, err := schema.ParseMode(job.SchemaMode)
				if err != nil {
					return fmt.Errorf("job %s: %w", job.Path, err)
				}
				opts.SchemaMode = mode
			}

			conv := New(opts, resolver, translator, logger)
			pr, err := conv.ConvertPath(egctx, job.Path, "", history)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Path, err)
			}
			results[i] = pr
			return nil
		})
	}

	err := eg.Wait()
	return results, err
}
