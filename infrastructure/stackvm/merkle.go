package stackvm

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2s"
)

// Digest is a Blake2s-256 hash.
type Digest [blake2s.Size]byte

// Hex returns the lowercase hex form used in proofs.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// parseDigest decodes a hex digest, rejecting any other length.
func parseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, err
	}
	if len(raw) != len(d) {
		return d, fmt.Errorf("digest has %d bytes, want %d", len(raw), len(d))
	}
	copy(d[:], raw)
	return d, nil
}

// Domain separation between leaves and interior nodes.
const (
	leafPrefix byte = 0x00
	nodePrefix byte = 0x01
)

func hashLeaf(data []byte) Digest {
	buf := make([]byte, 0, 1+len(data))
	buf = append(buf, leafPrefix)
	buf = append(buf, data...)
	return blake2s.Sum256(buf)
}

func hashNode(left, right Digest) Digest {
	var buf [1 + 2*blake2s.Size]byte
	buf[0] = nodePrefix
	copy(buf[1:], left[:])
	copy(buf[1+blake2s.Size:], right[:])
	return blake2s.Sum256(buf[:])
}

// MerkleTree commits to a power-of-two number of leaves.
type MerkleTree struct {
	levels [][]Digest // levels[0] are the leaves, the last level is the root
}

// NewMerkleTree builds a tree over the given leaf data.
func NewMerkleTree(leaves [][]byte) (*MerkleTree, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("merkle tree needs a power-of-two number of leaves, got %d", n)
	}

	level := make([]Digest, n)
	for i, data := range leaves {
		level[i] = hashLeaf(data)
	}

	levels := [][]Digest{level}
	for len(level) > 1 {
		next := make([]Digest, len(level)/2)
		for i := range next {
			next[i] = hashNode(level[2*i], level[2*i+1])
		}
		levels = append(levels, next)
		level = next
	}
	return &MerkleTree{levels: levels}, nil
}

// Root returns the Merkle root
func (t *MerkleTree) Root() Digest {
	return t.levels[len(t.levels)-1][0]
}

// Depth is the number of siblings in every authentication path.
func (t *MerkleTree) Depth() int {
	return len(t.levels) - 1
}

// Path returns the sibling hashes from leaf index up to the root.
func (t *MerkleTree) Path(index uint64) ([]Digest, error) {
	if index >= uint64(len(t.levels[0])) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, len(t.levels[0]))
	}
	path := make([]Digest, 0, t.Depth())
	for _, level := range t.levels[:t.Depth()] {
		path = append(path, level[index^1])
		index >>= 1
	}
	return path, nil
}

// verifyPath reports whether leaf data at index hashes up to root along path.
// depth pins the path length so a short path cannot stand in for a subtree.
func verifyPath(root Digest, index uint64, data []byte, path []Digest, depth int) bool {
	if len(path) != depth || index>>uint(depth) != 0 {
		return false
	}
	h := hashLeaf(data)
	for _, sib := range path {
		if index&1 == 0 {
			h = hashNode(h, sib)
		} else {
			h = hashNode(sib, h)
		}
		index >>= 1
	}
	return h == root
}
