package dumpfiles

import (
	"bytes"
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/afero"
)

func TestLoadConfiguration(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(bytes.NewBufferString(configYAML))
	is.NoErr(err)

	is.Equal(cfg.SiteIRI, "https://example.wikibase.cloud/entity/")
	is.Equal(cfg.Workers, 8)
	is.Equal(len(cfg.Sources), 2)
	is.Equal(cfg.Sources[0].URL, "https://dumps.wikimedia.org/wikidatawiki/entities/latest-all.json.gz")
	is.Equal(cfg.Sources[1].Project, "wikidatawiki")
}

func TestDumpFilesFromConfiguration(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(bytes.NewBufferString(configYAML))
	is.NoErr(err)

	files, err := cfg.DumpFiles(afero.NewMemMapFs())
	is.NoErr(err)
	is.Equal(len(files), 2)

	online, ok := files[0].(*OnlineDumpFile)
	is.True(ok)
	is.Equal(online.FileName(), "latest-all.json.gz")
	is.Equal(online.DumpContentType(), JSON)

	local, ok := files[1].(*LocalDumpFile)
	is.True(ok)
	is.Equal(local.FileName(), "20240101-all.json.gz")
	is.Equal(local.String(), "wikidatawiki-json-20240101")
}

func TestDumpFilesRejectsUnknownContentType(t *testing.T) {
	is := is.New(t)

	cfg := &Config{Sources: []DumpSource{{ContentType: "tarball", Directory: "/dumps", FileName: "x"}}}
	_, err := cfg.DumpFiles(afero.NewMemMapFs())
	is.True(err != nil)
}

func TestDumpFilesRequiresAFileNameForLocalSources(t *testing.T) {
	is := is.New(t)

	cfg := &Config{Sources: []DumpSource{{ContentType: "json", Directory: "/dumps"}}}
	_, err := cfg.DumpFiles(afero.NewMemMapFs())
	is.True(err != nil)
}

func TestConfigFromEnvironment(t *testing.T) {
	is := is.New(t)

	t.Setenv("DUMPFILE_NAME", "dump.json.gz")
	t.Setenv("DUMPFILE_WORKERS", "2")

	cfg, err := ConfigFromEnvironment(context.Background())
	is.NoErr(err)

	is.Equal(cfg.Workers, 2)
	is.Equal(cfg.Sources[0].ContentType, "json")
	is.Equal(cfg.Sources[0].Directory, ".")
	is.Equal(cfg.Sources[0].FileName, "dump.json.gz")
}

func TestConfigFromEnvironmentWithBadWorkerCount(t *testing.T) {
	is := is.New(t)

	t.Setenv("DUMPFILE_WORKERS", "many")

	_, err := ConfigFromEnvironment(context.Background())
	is.True(err != nil)
}

const configYAML string = `
siteIRI: https://example.wikibase.cloud/entity/
workers: 8
sources:
  - contentType: json
    directory: /dumps/online
    url: https://dumps.wikimedia.org/wikidatawiki/entities/latest-all.json.gz
  - project: wikidatawiki
    dateStamp: "20240101"
    contentType: json
    directory: /dumps/local
`
