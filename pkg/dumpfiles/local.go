package dumpfiles

import (
	"context"
	"fmt"
	"io"

	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// LocalDumpFile is a dump that already exists in a directory
type LocalDumpFile struct {
	dumpFileInfo
	directory *DirectoryManager
}

// NewLocalDumpFile creates a dump file for fileName in directory. Without decorators the
// project name is "LocalDumpFile" and the date stamp "LocalDate".
func NewLocalDumpFile(directory *DirectoryManager, contentType DumpContentType, fileName string, decorators ...DumpFileDecoratorFunc) *LocalDumpFile {
	f := &LocalDumpFile{
		dumpFileInfo: dumpFileInfo{
			contentType: contentType,
			fileName:    fileName,
			dateStamp:   "LocalDate",
			projectName: "LocalDumpFile",
		},
		directory: directory,
	}

	for _, decorator := range decorators {
		decorator(&f.dumpFileInfo)
	}

	return f
}

func (f *LocalDumpFile) IsAvailable(ctx context.Context) bool {
	return f.directory.HasFile(f.fileName)
}

// PrepareDumpFile does nothing since a local dump file is always as prepared as it gets
func (f *LocalDumpFile) PrepareDumpFile(ctx context.Context) error {
	return nil
}

func (f *LocalDumpFile) DumpFileStream(ctx context.Context) (io.ReadCloser, error) {
	if !f.directory.HasFile(f.fileName) {
		return nil, wberrors.NewIOError(fmt.Sprintf("dump file %s is not available in %s", f.fileName, f.directory.Directory()), nil)
	}

	return f.directory.InputStreamForFile(f.fileName, CompressionFor(f.contentType))
}

func (f *LocalDumpFile) DumpFileReader(ctx context.Context) (*TextReader, error) {
	stream, err := f.DumpFileStream(ctx)
	if err != nil {
		return nil, err
	}
	return newTextReader(stream), nil
}
