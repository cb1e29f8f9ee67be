package dumpfiles

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

type DumpSource struct {
	Project     string `yaml:"project"`
	DateStamp   string `yaml:"dateStamp"`
	ContentType string `yaml:"contentType"`
	Directory   string `yaml:"directory"`
	FileName    string `yaml:"fileName"`
	URL         string `yaml:"url"`
}

type Config struct {
	SiteIRI string       `yaml:"siteIRI"`
	Workers int          `yaml:"workers"`
	Sources []DumpSource `yaml:"sources"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}

// ConfigFromEnvironment describes a single dump source with DUMPFILE_* variables
func ConfigFromEnvironment(ctx context.Context) (*Config, error) {
	workers, err := strconv.Atoi(env.GetVariableOrDefault(ctx, "DUMPFILE_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("DUMPFILE_WORKERS is not a number: %w", err)
	}

	return &Config{
		SiteIRI: env.GetVariableOrDefault(ctx, "DUMPFILE_SITE_IRI", ""),
		Workers: workers,
		Sources: []DumpSource{
			{
				Project:     env.GetVariableOrDefault(ctx, "DUMPFILE_PROJECT", ""),
				DateStamp:   env.GetVariableOrDefault(ctx, "DUMPFILE_DATESTAMP", ""),
				ContentType: env.GetVariableOrDefault(ctx, "DUMPFILE_CONTENT_TYPE", JSON.String()),
				Directory:   env.GetVariableOrDefault(ctx, "DUMPFILE_DIRECTORY", "."),
				FileName:    env.GetVariableOrDefault(ctx, "DUMPFILE_NAME", ""),
				URL:         env.GetVariableOrDefault(ctx, "DUMPFILE_URL", ""),
			},
		},
	}, nil
}

// DumpFiles creates an online dump file for every source with a url and a local one for
// the rest
func (c *Config) DumpFiles(fs afero.Fs) ([]DumpFile, error) {
	files := []DumpFile{}

	for idx, src := range c.Sources {
		contentType, err := ParseDumpContentType(src.ContentType)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", idx, err)
		}

		directory, err := NewDirectoryManager(fs, src.Directory)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", idx, err)
		}

		decorators := []DumpFileDecoratorFunc{}
		if src.Project != "" {
			decorators = append(decorators, ProjectName(src.Project))
		}
		if src.DateStamp != "" {
			decorators = append(decorators, DateStamp(src.DateStamp))
		}

		if src.URL != "" {
			f, err := NewOnlineDumpFile(directory, contentType, src.URL, decorators...)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", idx, err)
			}
			files = append(files, f)
			continue
		}

		fileName := src.FileName
		if fileName == "" {
			if src.Project == "" || src.DateStamp == "" {
				return nil, fmt.Errorf("source %d: a local source needs a file name or both project and date stamp", idx)
			}
			fileName = WikimediaFileName(src.Project, src.DateStamp, contentType)
		}

		files = append(files, NewLocalDumpFile(directory, contentType, fileName, decorators...))
	}

	return files, nil
}
