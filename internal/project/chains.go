package project

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/piwi3910/SlabCAM/internal/path"
	"github.com/piwi3910/SlabCAM/internal/wire"
)

// ChainExt is the file extension of saved chain files.
const ChainExt = ".chains"

// A chain file is the magic, a version byte and a wire stream of rings.
var chainMagic = []byte("SLABCHN")

const chainVersion byte = 1

var (
	ErrNotChainFile = errors.New("not a chain file")
	ErrChainVersion = errors.New("unsupported chain file version")
)

// WriteChains writes the chain file header and rings to w.
func WriteChains(w io.Writer, rings []*path.Ring) error {
	if _, err := w.Write(append(append([]byte(nil), chainMagic...), chainVersion)); err != nil {
		return err
	}
	return wire.WriteRings(w, rings)
}

// ReadChains checks the chain file header and decodes every ring.
func ReadChains(r io.Reader) ([]*path.Ring, error) {
	hdr := make([]byte, len(chainMagic)+1)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, ErrNotChainFile
	}
	if !bytes.Equal(hdr[:len(chainMagic)], chainMagic) {
		return nil, ErrNotChainFile
	}
	if v := hdr[len(chainMagic)]; v != chainVersion {
		return nil, fmt.Errorf("%w: %d", ErrChainVersion, v)
	}
	return wire.ReadRings(r)
}

// SaveChains writes rings to a chain file, creating parent directories.
func SaveChains(filename string, rings []*path.Ring) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteChains(w, rings); err != nil {
		f.Close()
		return fmt.Errorf("save chains %s: %w", filename, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadChains reads every ring from a chain file.
func LoadChains(filename string) ([]*path.Ring, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rings, err := ReadChains(f)
	if err != nil {
		return nil, fmt.Errorf("load chains %s: %w", filename, err)
	}
	return rings, nil
}
