/*
Package reader opens OSM input files and dispatches them to the XML or PBF
parser.

The format is detected from the file name: .osm and .xml files are parsed
as OSM XML, .pbf (and .osm.pbf) as PBF. An additional .gz, .zst, .xz, .lz4
or .bz2 suffix selects the decompression.
*/
package reader

import (
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/logging"
	"github.com/omniscale/osmtables/parser/osmxml"
	"github.com/omniscale/osmtables/parser/pbf"
)

var log = logging.NewLogger("reader")

var ErrUnknownFormat = errors.New("unknown input format")

type Format int

const (
	XML Format = iota + 1
	PBF
)

func (f Format) String() string {
	switch f {
	case XML:
		return "OSM XML"
	case PBF:
		return "OSM PBF"
	}
	return "unknown"
}

// Compression names, as detected from the file suffix.
const (
	NoCompression = ""
	Gzip          = "gzip"
	Zstd          = "zstd"
	Xz            = "xz"
	Lz4           = "lz4"
	Bzip2         = "bzip2"
)

var compressionSuffixes = map[string]string{
	".gz":  Gzip,
	".zst": Zstd,
	".xz":  Xz,
	".lz4": Lz4,
	".bz2": Bzip2,
}

// Detect returns the format and compression of filename.
func Detect(filename string) (Format, string, error) {
	name := strings.ToLower(filepath.Base(filename))
	compression := NoCompression
	ext := filepath.Ext(name)
	if c, ok := compressionSuffixes[ext]; ok {
		compression = c
		name = strings.TrimSuffix(name, ext)
		ext = filepath.Ext(name)
	}
	switch ext {
	case ".osm", ".xml":
		return XML, compression, nil
	case ".pbf":
		return PBF, compression, nil
	}
	return 0, "", errors.Wrapf(ErrUnknownFormat, "%s", filename)
}

// Input is an opened and decompressed OSM file.
type Input struct {
	Filename    string
	Format      Format
	Compression string
	// Concurrency of the PBF block decoders. Defaults to NumCPU if <= 0.
	Concurrency int

	r       io.Reader
	closers []io.Closer
}

// Open opens filename for parsing. With progress, the read bytes are
// displayed as a progress bar on stderr.
func Open(filename string, progress bool) (*Input, error) {
	format, compression, err := Detect(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}
	in := &Input{
		Filename:    filename,
		Format:      format,
		Compression: compression,
		r:           f,
		closers:     []io.Closer{f},
	}
	if progress {
		bar, err := wrapProgress(f)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.r = bar
		in.closers = append(in.closers, bar)
	}
	if err := in.decompress(); err != nil {
		in.Close()
		return nil, errors.Wrapf(err, "opening %s input", compression)
	}
	return in, nil
}

func (in *Input) decompress() error {
	switch in.Compression {
	case NoCompression:
		return nil
	case Gzip:
		r, err := gzip.NewReader(in.r)
		if err != nil {
			return err
		}
		in.r = r
		in.closers = append(in.closers, r)
	case Zstd:
		r, err := zstd.NewReader(in.r)
		if err != nil {
			return err
		}
		rc := r.IOReadCloser()
		in.r = rc
		in.closers = append(in.closers, rc)
	case Xz:
		r, err := xz.NewReader(in.r)
		if err != nil {
			return err
		}
		in.r = r
	case Lz4:
		in.r = lz4.NewReader(in.r)
	case Bzip2:
		in.r = bzip2.NewReader(in.r)
	default:
		return fmt.Errorf("unsupported compression %q", in.Compression)
	}
	return nil
}

// Parse sends all nodes and ways to records. records is closed when
// Parse returns.
func (in *Input) Parse(ctx context.Context, records chan element.Record) error {
	log.Printf("reading %s (%s)", in.Filename, in.describe())
	switch in.Format {
	case XML:
		return osmxml.New(in.r, osmxml.Config{Records: records}).Parse(ctx)
	case PBF:
		return pbf.Parse(ctx, in.r, records, in.Concurrency)
	}
	close(records)
	return ErrUnknownFormat
}

func (in *Input) describe() string {
	if in.Compression == NoCompression {
		return in.Format.String()
	}
	return in.Format.String() + ", " + in.Compression
}

// Close closes the decompressors and the file.
func (in *Input) Close() error {
	var first error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	in.closers = nil
	return first
}

type Options struct {
	Progress    bool
	Concurrency int
}

// Read opens filename, sends all records to records and closes the file.
func Read(ctx context.Context, filename string, records chan element.Record, opts Options) error {
	in, err := Open(filename, opts.Progress)
	if err != nil {
		close(records)
		return err
	}
	defer in.Close()
	in.Concurrency = opts.Concurrency
	return in.Parse(ctx, records)
}

type progressBar struct {
	r   io.Reader
	bar *pb.ProgressBar
}

func wrapProgress(f *os.File) (*progressBar, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat input")
	}
	bar := pb.New64(fi.Size()).SetUnits(pb.U_BYTES).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()
	return &progressBar{r: bar.NewProxyReader(f), bar: bar}, nil
}

func (p *progressBar) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

// Close stops the bar and clears its line. The file is closed separately.
func (p *progressBar) Close() error {
	p.bar.Output = nil
	p.bar.NotPrint = true
	p.bar.Finish()
	fmt.Fprint(os.Stderr, "\033[2K\r")
	return nil
}
