package stackvm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafData(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = []byte(fmt.Sprintf("leaf-%d", i))
	}
	return leaves
}

func TestMerkleTree_PathsVerify(t *testing.T) {
	for _, n := range []int{1, 2, 8, 64} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			leaves := leafData(n)
			tree, err := NewMerkleTree(leaves)
			require.NoError(t, err)

			for i, data := range leaves {
				path, err := tree.Path(uint64(i))
				require.NoError(t, err)
				assert.True(t, verifyPath(tree.Root(), uint64(i), data, path, tree.Depth()), "leaf %d", i)
			}
		})
	}
}

func TestMerkleTree_RejectsTampering(t *testing.T) {
	leaves := leafData(8)
	tree, err := NewMerkleTree(leaves)
	require.NoError(t, err)
	path, err := tree.Path(3)
	require.NoError(t, err)
	root := tree.Root()

	assert.False(t, verifyPath(root, 3, []byte("other"), path, tree.Depth()), "wrong data")
	assert.False(t, verifyPath(root, 2, leaves[3], path, tree.Depth()), "wrong index")
	assert.False(t, verifyPath(root, 3, leaves[3], path[:2], tree.Depth()), "short path")
	assert.False(t, verifyPath(root, 3+8, leaves[3], path, tree.Depth()), "index beyond tree")

	bad := append([]Digest(nil), path...)
	bad[1][0] ^= 1
	assert.False(t, verifyPath(root, 3, leaves[3], bad, tree.Depth()), "corrupted sibling")
}

func TestMerkleTree_Errors(t *testing.T) {
	_, err := NewMerkleTree(nil)
	assert.Error(t, err)

	_, err = NewMerkleTree(leafData(3))
	assert.Error(t, err)

	tree, err := NewMerkleTree(leafData(4))
	require.NoError(t, err)
	_, err = tree.Path(4)
	assert.Error(t, err)
}

func TestParseDigest(t *testing.T) {
	d := hashLeaf([]byte("x"))
	got, err := parseDigest(d.Hex())
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = parseDigest("abcd")
	assert.Error(t, err)
	_, err = parseDigest("zz")
	assert.Error(t, err)
}
