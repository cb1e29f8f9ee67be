package dumpfiles

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// DumpContentType tells what a dump file contains and, through that, how it is compressed
type DumpContentType int

const (
	Daily DumpContentType = iota
	Current
	Full
	Sites
	JSON
)

var contentTypeNames = map[DumpContentType]string{
	Daily:   "daily",
	Current: "current",
	Full:    "full",
	Sites:   "sites",
	JSON:    "json",
}

func (t DumpContentType) String() string {
	if name, ok := contentTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DumpContentType(%d)", int(t))
}

func ParseDumpContentType(s string) (DumpContentType, error) {
	for t, name := range contentTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, wberrors.NewInvalidArgumentError(fmt.Sprintf("unknown dump content type \"%s\"", s))
}

type CompressionType int

const (
	None CompressionType = iota
	BZ2
	GZIP
)

func (c CompressionType) String() string {
	switch c {
	case BZ2:
		return "bz2"
	case GZIP:
		return "gzip"
	default:
		return "none"
	}
}

var compressionTypes = map[DumpContentType]CompressionType{
	Daily:   BZ2,
	Current: BZ2,
	Full:    BZ2,
	Sites:   GZIP,
	JSON:    GZIP,
}

// CompressionFor returns the compression used by dump files of the content type
func CompressionFor(t DumpContentType) CompressionType {
	if c, ok := compressionTypes[t]; ok {
		return c
	}
	return None
}

// DumpFile is a dump that may have to be prepared, for example downloaded, before it
// can be streamed. PrepareDumpFile is idempotent and must be called before the stream
// is requested.
type DumpFile interface {
	IsAvailable(ctx context.Context) bool
	DumpContentType() DumpContentType

	PrepareDumpFile(ctx context.Context) error
	DumpFileStream(ctx context.Context) (io.ReadCloser, error)
	DumpFileReader(ctx context.Context) (*TextReader, error)

	ProjectName() string
	DateStamp() string
	String() string
}

// TextReader reads the decompressed dump as UTF-8 text. Closing it closes the dump stream.
type TextReader struct {
	*bufio.Reader
	closer io.Closer
}

func (r *TextReader) Close() error {
	return r.closer.Close()
}

// dumpFileInfo is what local and online dump files have in common
type dumpFileInfo struct {
	contentType DumpContentType
	fileName    string
	dateStamp   string
	projectName string
}

type DumpFileDecoratorFunc func(info *dumpFileInfo)

func DateStamp(dateStamp string) DumpFileDecoratorFunc {
	return func(info *dumpFileInfo) {
		info.dateStamp = dateStamp
	}
}

func ProjectName(projectName string) DumpFileDecoratorFunc {
	return func(info *dumpFileInfo) {
		info.projectName = projectName
	}
}

func (i *dumpFileInfo) DumpContentType() DumpContentType { return i.contentType }
func (i *dumpFileInfo) FileName() string                 { return i.fileName }
func (i *dumpFileInfo) DateStamp() string                { return i.dateStamp }
func (i *dumpFileInfo) ProjectName() string              { return i.projectName }

func (i *dumpFileInfo) String() string {
	return i.projectName + "-" + i.contentType.String() + "-" + i.dateStamp
}

// WikimediaFileName returns the name Wikimedia gives a dump of the project and date
func WikimediaFileName(projectName, dateStamp string, t DumpContentType) string {
	switch t {
	case Daily:
		return projectName + "-" + dateStamp + "-pages-meta-hist-incr.xml.bz2"
	case Current:
		return projectName + "-" + dateStamp + "-pages-meta-current.xml.bz2"
	case Full:
		return projectName + "-" + dateStamp + "-pages-meta-history.xml.bz2"
	case Sites:
		return projectName + "-" + dateStamp + "-sites.sql.gz"
	default:
		return dateStamp + "-all.json.gz"
	}
}
