package extract

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/RefFinder/core/errors"
)

var (
	xzMagic   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	gzipMagic = []byte{0x1F, 0x8B}
)

func stripCompression(name string) string {
	for _, ext := range []string{".xz", ".gz"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

func isTar(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(stripCompression(lower), ".tar") || strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".txz")
}

// Decompress wraps r with an xz or gzip reader when the stream starts with
// the matching magic bytes, and returns r unchanged otherwise.
func Decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(head, xzMagic):
		return xz.NewReader(br)
	case bytes.HasPrefix(head, gzipMagic):
		return gzip.NewReader(br)
	}
	return br, nil
}

// Visitor is called for each document in a file. Returning stop=true ends
// the walk early.
type Visitor func(name string, segs []Segment) (stop bool, err error)

// ReadFile extracts the segments of the file at path. Compressed files are
// decompressed, and each regular file in a tar archive is extracted as its
// own document named "archive.tar/member".
func ReadFile(path string, opts Options) ([]Segment, error) {
	var out []Segment
	err := Walk(path, opts, func(_ string, segs []Segment) (bool, error) {
		out = append(out, segs...)
		return false, nil
	})
	return out, err
}

// Walk extracts the file at path document by document, calling visit for
// each.
func Walk(path string, opts Options, visit Visitor) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer f.Close()
	return WalkReader(path, f, opts, visit)
}

// WalkReader is Walk over an already open stream named name.
func WalkReader(name string, r io.Reader, opts Options, visit Visitor) error {
	dr, err := Decompress(r)
	if err != nil {
		return errors.NewIO("decompress", name, err)
	}
	if isTar(name) {
		return walkTar(name, dr, opts, visit)
	}
	data, err := readLimited(name, dr, opts.MaxBytes)
	if err != nil {
		return err
	}
	segs, err := Extract(name, data, opts)
	if err != nil {
		return err
	}
	_, err = visit(name, segs)
	return err
}

func walkTar(name string, r io.Reader, opts Options, visit Visitor) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewIO("read archive", name, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		member := name + "/" + hdr.Name
		data, err := readLimited(member, tr, opts.MaxBytes)
		if err != nil {
			return err
		}
		mopts := opts
		mopts.MaxBytes = 0
		segs, err := Extract(hdr.Name, data, mopts)
		if err != nil {
			return err
		}
		for i := range segs {
			segs[i].Source = member
		}
		stop, err := visit(member, segs)
		if err != nil || stop {
			return err
		}
	}
}

func readLimited(name string, r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.NewIO("read", name, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.NewIO("read", name, err)
	}
	if int64(len(data)) > limit {
		return nil, &errors.ValidationError{Field: "size", Value: name, Message: "document exceeds the size limit"}
	}
	return data, nil
}
