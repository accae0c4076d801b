package pgnsource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/inhies/go-bytesize"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/park285/rooky/internal/game"
	"github.com/park285/rooky/internal/obslog"
	"github.com/park285/rooky/internal/pgn"
)

// countingReader tracks how many bytes passed through it.
type countingReader struct {
	r io.Reader
	n bytesize.ByteSize
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += bytesize.ByteSize(uint64(n))
	return n, err
}

// Source is a PGN file, decompressed on the fly for .zst and .bz2.
type Source struct {
	path  string
	size  bytesize.ByteSize
	in    *countingReader
	out   *countingReader
	close []func() error
}

// Open picks the decoder from the file extension; anything else is read as
// plain text.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	s := &Source{path: path, size: bytesize.ByteSize(stat.Size()), in: &countingReader{r: f}}
	s.close = append(s.close, f.Close)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zr, err := zstd.NewReader(s.in)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		s.out = &countingReader{r: zr}
		s.close = append(s.close, func() error { zr.Close(); return nil })
	case ".bz2":
		br, err := bzip2.NewReader(s.in, nil)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("bzip2 %s: %w", path, err)
		}
		s.out = &countingReader{r: br}
		s.close = append(s.close, br.Close)
	default:
		s.out = &countingReader{r: s.in}
	}
	return s, nil
}

func (s *Source) Read(p []byte) (int, error) { return s.out.Read(p) }

// Close releases decoders before the file.
func (s *Source) Close() error {
	var first error
	for i := len(s.close) - 1; i >= 0; i-- {
		if err := s.close[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Size is the file size on disk.
func (s *Source) Size() bytesize.ByteSize { return s.size }

// BytesRead counts decompressed bytes handed to the caller.
func (s *Source) BytesRead() bytesize.ByteSize { return s.out.n }

// Ratio is decompressed over compressed bytes read so far (1 for plain files).
func (s *Source) Ratio() float64 {
	if s.in.n == 0 {
		return 1
	}
	return float64(s.out.n) / float64(s.in.n)
}

// Each parses every game in r and calls fn for those with moves. It stops at
// the first syntax error or the first error from fn.
func Each(r io.Reader, fn func(*game.Game) error) (int, error) {
	pr := pgn.NewReader(r)
	n := 0
	for {
		g := game.New()
		moves, ok, err := pr.ReadGame(g)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		if len(moves) == 0 {
			obslog.L().Debug("pgn_game_without_moves", zap.Int("game", pr.Games()))
			continue
		}
		n++
		if err := fn(g); err != nil {
			return n, err
		}
	}
}

// EachInFile opens path and runs Each over it, logging throughput at the end.
func EachInFile(path string, fn func(*game.Game) error) (int, error) {
	s, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	n, err := Each(s, fn)
	obslog.L().Info("pgn_file_read",
		zap.String("path", path),
		zap.Int("games", n),
		zap.String("size", s.Size().String()),
		zap.String("read", s.BytesRead().String()),
		zap.Float64("ratio", s.Ratio()),
	)
	return n, err
}
