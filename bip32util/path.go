package bip32util

import (
	"math"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyPath is returned when an empty string is parsed.
	ErrEmptyPath = errors.New("derivation path cannot be empty")

	// ErrRelativePath is returned for paths that do not start
	// at the master key (m or M).
	ErrRelativePath = errors.New("derivation path must start with m or M")

	// ErrPathTooDeep is returned when a path would exceed the
	// depth that fits in the serialized key's depth byte.
	ErrPathTooDeep = errors.Errorf("derivation path exceeds %d levels", maxDepth)
)

const (
	privatePrefix  = "m"
	publicPrefix   = "M"
	hardenedSymbol = "'"
	hardenedAlt    = "h"
	maxDepth       = math.MaxUint8
)

// Path is an absolute BIP32 derivation path. Private paths (m/...)
// derive private children, public paths (M/...) only public ones.
type Path struct {
	private bool
	Indices []uint32
}

// ParsePath parses strings like m/0'/1 or M/44h/0h/0h/0/7.
func ParsePath(path string) (*Path, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	pieces := strings.Split(path, "/")
	p := &Path{}
	switch pieces[0] {
	case privatePrefix:
		p.private = true
	case publicPrefix:
		p.private = false
	default:
		return nil, ErrRelativePath
	}

	pieces = pieces[1:]
	if len(pieces) > maxDepth {
		return nil, ErrPathTooDeep
	}

	p.Indices = make([]uint32, len(pieces))
	for i, segment := range pieces {
		index, err := parseSegment(segment)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %d of %s", i+1, path)
		}
		p.Indices[i] = index
	}

	return p, nil
}

func parseSegment(segment string) (uint32, error) {
	hardened := false
	if strings.HasSuffix(segment, hardenedSymbol) || strings.HasSuffix(segment, hardenedAlt) {
		hardened = true
		segment = segment[:len(segment)-1]
	}

	// 31 bits: the top bit is reserved for the hardened flag
	n, err := strconv.ParseUint(segment, 10, 31)
	if err != nil {
		return 0, err
	}

	index := uint32(n)
	if hardened {
		index += hdkeychain.HardenedKeyStart
	}
	return index, nil
}

// Depth is the number of derivations below the master key.
func (p *Path) Depth() int {
	return len(p.Indices)
}

// IsPrivate reports whether the path starts with m.
func (p *Path) IsPrivate() bool {
	return p.private
}

// String renders the path using ' for hardened indices.
func (p *Path) String() string {
	steps := make([]string, 1, 1+p.Depth())
	if p.private {
		steps[0] = privatePrefix
	} else {
		steps[0] = publicPrefix
	}

	for _, index := range p.Indices {
		if index >= hdkeychain.HardenedKeyStart {
			steps = append(steps, strconv.FormatUint(uint64(index-hdkeychain.HardenedKeyStart), 10)+hardenedSymbol)
			continue
		}
		steps = append(steps, strconv.FormatUint(uint64(index), 10))
	}

	return strings.Join(steps, "/")
}
