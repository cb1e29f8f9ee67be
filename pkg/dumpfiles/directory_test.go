package dumpfiles

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/matryer/is"
	"github.com/spf13/afero"

	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// "line one\nline two\n" compressed with bzip2
const bzip2Fixture string = "QlpoOTFBWSZTWYx3v94AAATRgAAQQAACJYSAIAAxBkxAyGmmjwssIJicJ4u5IpwoSEY73+8A"

func TestCompressionForContentTypes(t *testing.T) {
	is := is.New(t)

	is.Equal(CompressionFor(Daily), BZ2)
	is.Equal(CompressionFor(Current), BZ2)
	is.Equal(CompressionFor(Full), BZ2)
	is.Equal(CompressionFor(Sites), GZIP)
	is.Equal(CompressionFor(JSON), GZIP)
	is.Equal(CompressionFor(DumpContentType(42)), None)
}

func TestParseDumpContentType(t *testing.T) {
	is := is.New(t)

	ct, err := ParseDumpContentType("JSON")
	is.NoErr(err)
	is.Equal(ct, JSON)

	_, err = ParseDumpContentType("xml")
	is.True(errors.Is(err, wberrors.ErrInvalidArgument))
}

func TestWikimediaFileName(t *testing.T) {
	is := is.New(t)

	is.Equal(WikimediaFileName("wikidatawiki", "20240101", JSON), "20240101-all.json.gz")
	is.Equal(WikimediaFileName("wikidatawiki", "20240101", Current), "wikidatawiki-20240101-pages-meta-current.xml.bz2")
}

func TestGzipInputStream(t *testing.T) {
	is := is.New(t)
	dir := testDirectory(is, afero.NewMemMapFs())

	_, err := dir.CreateFile("dump.json.gz", bytes.NewReader(gzipped(is, "hello gzip\n")))
	is.NoErr(err)

	stream, err := dir.InputStreamForFile("dump.json.gz", GZIP)
	is.NoErr(err)
	defer stream.Close()

	content, err := io.ReadAll(stream)
	is.NoErr(err)
	is.Equal(string(content), "hello gzip\n")
}

func TestBzip2InputStream(t *testing.T) {
	is := is.New(t)
	dir := testDirectory(is, afero.NewMemMapFs())

	compressed, err := base64.StdEncoding.DecodeString(bzip2Fixture)
	is.NoErr(err)

	_, err = dir.CreateFile("dump.xml.bz2", bytes.NewReader(compressed))
	is.NoErr(err)

	stream, err := dir.InputStreamForFile("dump.xml.bz2", BZ2)
	is.NoErr(err)
	defer stream.Close()

	content, err := io.ReadAll(stream)
	is.NoErr(err)
	is.Equal(string(content), "line one\nline two\n")
}

func TestInputStreamForInvalidGzipFails(t *testing.T) {
	is := is.New(t)
	dir := testDirectory(is, afero.NewMemMapFs())

	_, err := dir.CreateFile("broken.json.gz", bytes.NewReader([]byte("not gzip at all")))
	is.NoErr(err)

	_, err = dir.InputStreamForFile("broken.json.gz", GZIP)
	is.True(errors.Is(err, wberrors.ErrIO))
}

func TestCreateFileLeavesNoPartialFiles(t *testing.T) {
	is := is.New(t)
	dir := testDirectory(is, afero.NewMemMapFs())

	n, err := dir.CreateFile("b.txt", bytes.NewReader([]byte("bee")))
	is.NoErr(err)
	is.Equal(n, int64(3))

	_, err = dir.CreateFile("a.txt", bytes.NewReader([]byte("a")))
	is.NoErr(err)

	names, err := dir.FileNames()
	is.NoErr(err)
	is.Equal(names, []string{"a.txt", "b.txt"})
	is.True(dir.HasFile("a.txt"))
	is.True(!dir.HasFile("c.txt"))
}

func TestLocalDumpFile(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	dir := testDirectory(is, afero.NewMemMapFs())

	df := NewLocalDumpFile(dir, JSON, "local.json.gz")
	is.Equal(df.String(), "LocalDumpFile-json-LocalDate")
	is.True(!df.IsAvailable(ctx))

	_, err := df.DumpFileStream(ctx)
	is.True(errors.Is(err, wberrors.ErrIO))

	_, err = dir.CreateFile("local.json.gz", bytes.NewReader(gzipped(is, "[\n]\n")))
	is.NoErr(err)

	is.True(df.IsAvailable(ctx))
	is.NoErr(df.PrepareDumpFile(ctx))

	reader, err := df.DumpFileReader(ctx)
	is.NoErr(err)
	defer reader.Close()

	line, err := reader.ReadString('\n')
	is.NoErr(err)
	is.Equal(line, "[\n")
}

func TestLocalDumpFileDecorators(t *testing.T) {
	is := is.New(t)
	dir := testDirectory(is, afero.NewMemMapFs())

	df := NewLocalDumpFile(dir, Current, "x.xml.bz2", ProjectName("svwiki"), DateStamp("20240501"))
	is.Equal(df.ProjectName(), "svwiki")
	is.Equal(df.DateStamp(), "20240501")
	is.Equal(df.DumpContentType(), Current)
	is.Equal(df.String(), "svwiki-current-20240501")
}

func TestTextReaderReplacesInvalidUTF8(t *testing.T) {
	is := is.New(t)

	r := newTextReader(io.NopCloser(bytes.NewReader([]byte("ok\xffok\n"))))
	line, err := r.ReadString('\n')
	is.NoErr(err)
	is.Equal(line, "ok�ok\n")
}

func testDirectory(is *is.I, fs afero.Fs) *DirectoryManager {
	dir, err := NewDirectoryManager(fs, "/dumps")
	is.NoErr(err)
	return dir
}

func gzipped(is *is.I, content string) []byte {
	buf := &bytes.Buffer{}
	w := gzip.NewWriter(buf)
	_, err := w.Write([]byte(content))
	is.NoErr(err)
	is.NoErr(w.Close())
	return buf.Bytes()
}
