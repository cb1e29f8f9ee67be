package dumpfiles

import (
	"compress/bzip2"
	"io"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// DirectoryManager gives access to the files of one directory of a file system
type DirectoryManager struct {
	fs        afero.Fs
	directory string
}

// NewDirectoryManager creates the directory if needed
func NewDirectoryManager(fs afero.Fs, directory string) (*DirectoryManager, error) {
	if err := fs.MkdirAll(directory, 0755); err != nil {
		return nil, wberrors.NewIOError("could not create dump file directory", errors.Wrapf(err, "mkdir %s", directory))
	}

	return &DirectoryManager{fs: fs, directory: directory}, nil
}

func (m *DirectoryManager) Directory() string {
	return m.directory
}

func (m *DirectoryManager) path(fileName string) string {
	return filepath.Join(m.directory, fileName)
}

func (m *DirectoryManager) HasFile(fileName string) bool {
	info, err := m.fs.Stat(m.path(fileName))
	return err == nil && !info.IsDir()
}

// FileNames lists the regular files in the directory in lexical order
func (m *DirectoryManager) FileNames() ([]string, error) {
	infos, err := afero.ReadDir(m.fs, m.directory)
	if err != nil {
		return nil, wberrors.NewIOError("could not list dump file directory", errors.WithStack(err))
	}

	names := []string{}
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// InputStreamForFile opens a file and decompresses it on the fly
func (m *DirectoryManager) InputStreamForFile(fileName string, compression CompressionType) (io.ReadCloser, error) {
	f, err := m.fs.Open(m.path(fileName))
	if err != nil {
		return nil, wberrors.NewIOError("could not open dump file", errors.Wrapf(err, "open %s", fileName))
	}

	switch compression {
	case BZ2:
		return &decompressingReader{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	case GZIP:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, wberrors.NewIOError("could not read gzip header", errors.Wrapf(err, "gunzip %s", fileName))
		}
		return &decompressingReader{Reader: gz, closers: []io.Closer{gz, f}}, nil
	default:
		return f, nil
	}
}

// CreateFile writes content to a temporary file that is renamed into place when complete,
// so that HasFile never sees a partial file.
func (m *DirectoryManager) CreateFile(fileName string, content io.Reader) (int64, error) {
	partial := m.path(fileName + ".part")

	f, err := m.fs.Create(partial)
	if err != nil {
		return 0, wberrors.NewIOError("could not create file", errors.Wrapf(err, "create %s", partial))
	}

	n, err := io.Copy(f, content)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		m.fs.Remove(partial)
		return n, wberrors.NewIOError("could not write file", errors.Wrapf(err, "write %s", partial))
	}

	if err = m.fs.Rename(partial, m.path(fileName)); err != nil {
		return n, wberrors.NewIOError("could not move file into place", errors.Wrapf(err, "rename %s", partial))
	}

	return n, nil
}

type decompressingReader struct {
	io.Reader
	closers []io.Closer
}

func (r *decompressingReader) Close() error {
	var err error
	for _, c := range r.closers {
		err = errors.CombineErrors(err, c.Close())
	}
	return err
}
