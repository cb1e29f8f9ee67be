package dumpfiles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	getter "github.com/hashicorp/go-getter"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

var tracer = otel.Tracer("wikibase-datamodel/dumpfiles")

const TraceAttributeDumpFile string = "dump-file"

// OnlineDumpFile is a dump that is downloaded into a directory when it is prepared
type OnlineDumpFile struct {
	dumpFileInfo
	url       string
	directory *DirectoryManager

	httpClient *http.Client
	mu         sync.Mutex
}

// NewOnlineDumpFile creates a dump file for the resource at rawURL. The local file is
// named after the last path segment of the url.
func NewOnlineDumpFile(directory *DirectoryManager, contentType DumpContentType, rawURL string, decorators ...DumpFileDecoratorFunc) (*OnlineDumpFile, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, wberrors.NewInvalidArgumentError(fmt.Sprintf("\"%s\" is not a http(s) url", rawURL))
	}

	fileName := path.Base(u.Path)
	if fileName == "/" || fileName == "." {
		return nil, wberrors.NewInvalidArgumentError(fmt.Sprintf("url \"%s\" does not name a file", rawURL))
	}

	f := &OnlineDumpFile{
		dumpFileInfo: dumpFileInfo{
			contentType: contentType,
			fileName:    fileName,
			dateStamp:   "latest",
			projectName: "wikidatawiki",
		},
		url:       rawURL,
		directory: directory,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, decorator := range decorators {
		decorator(&f.dumpFileInfo)
	}

	return f, nil
}

func (f *OnlineDumpFile) URL() string {
	return f.url
}

// IsAvailable is true when the file has been downloaded or the server reports that it exists
func (f *OnlineDumpFile) IsAvailable(ctx context.Context) bool {
	if f.directory.HasFile(f.fileName) {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, f.url, nil)
	if err != nil {
		return false
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logging.GetFromContext(ctx).Debug("dump file availability check failed", "url", f.url, "err", err.Error())
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// PrepareDumpFile downloads the dump unless it is already present. Concurrent calls wait
// for the first one to finish.
func (f *OnlineDumpFile) PrepareDumpFile(ctx context.Context) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.directory.HasFile(f.fileName) {
		return nil
	}

	ctx, span := tracer.Start(ctx, "prepare-dump-file",
		trace.WithAttributes(attribute.String(TraceAttributeDumpFile, f.String())),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)
	log.Info("downloading dump file", "url", f.url, "directory", f.directory.Directory())

	tempDir, err := os.MkdirTemp("", "wikibase-dump-*")
	if err != nil {
		return wberrors.NewIOError("could not create download directory", errors.WithStack(err))
	}
	defer os.RemoveAll(tempDir)

	downloaded := filepath.Join(tempDir, f.fileName)

	client := &getter.Client{
		Ctx:  ctx,
		Src:  f.url,
		Dst:  downloaded,
		Mode: getter.ClientModeFile,
		Getters: map[string]getter.Getter{
			"http":  &getter.HttpGetter{Client: f.httpClient},
			"https": &getter.HttpGetter{Client: f.httpClient},
		},
		// dump files are decompressed while streaming, never on disk
		Decompressors: map[string]getter.Decompressor{},
	}

	if err = client.Get(); err != nil {
		log.Error("failed to download dump file", "url", f.url, "err", err.Error())
		return wberrors.NewIOError("could not download dump file", errors.Wrapf(err, "get %s", f.url))
	}

	src, err := os.Open(downloaded)
	if err != nil {
		return wberrors.NewIOError("could not open downloaded dump file", errors.WithStack(err))
	}
	defer src.Close()

	n, err := f.directory.CreateFile(f.fileName, src)
	if err != nil {
		return err
	}

	log.Info("dump file downloaded", "file", f.fileName, "bytes", n)

	return nil
}

func (f *OnlineDumpFile) DumpFileStream(ctx context.Context) (io.ReadCloser, error) {
	if !f.directory.HasFile(f.fileName) {
		return nil, wberrors.NewIOError(fmt.Sprintf("dump file %s has not been prepared", f.String()), nil)
	}

	return f.directory.InputStreamForFile(f.fileName, CompressionFor(f.contentType))
}

func (f *OnlineDumpFile) DumpFileReader(ctx context.Context) (*TextReader, error) {
	stream, err := f.DumpFileStream(ctx)
	if err != nil {
		return nil, err
	}
	return newTextReader(stream), nil
}
