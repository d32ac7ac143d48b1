package stackvm

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/blake2s"
)

// Channel is a Fiat-Shamir transcript over Blake2s.
type Channel struct {
	state Digest
}

// NewChannel creates a channel seeded with a domain label.
func NewChannel(label string) *Channel {
	return &Channel{state: blake2s.Sum256([]byte(label))}
}

// Absorb mixes data into the transcript.
func (c *Channel) Absorb(data []byte) {
	buf := make([]byte, 0, len(c.state)+len(data))
	buf = append(buf, c.state[:]...)
	buf = append(buf, data...)
	c.state = blake2s.Sum256(buf)
}

// AbsorbUint64 mixes one integer into the transcript.
func (c *Channel) AbsorbUint64(v uint64) {
	c.Absorb(binary.LittleEndian.AppendUint64(nil, v))
}

// DrawUint64 squeezes one integer out of the transcript.
func (c *Channel) DrawUint64() uint64 {
	c.Absorb([]byte{0x02})
	return binary.LittleEndian.Uint64(c.state[:8])
}

// powDigest is the hash a nonce must make start with enough zero bits.
func (c *Channel) powDigest(nonce uint64) Digest {
	var buf [len(Digest{}) + 8]byte
	copy(buf[:], c.state[:])
	binary.LittleEndian.PutUint64(buf[len(c.state):], nonce)
	return blake2s.Sum256(buf[:])
}

// leadingZeros counts the leading zero bits of d.
func leadingZeros(d Digest) int {
	n := 0
	for _, b := range d {
		if b != 0 {
			return n + bits.LeadingZeros8(b)
		}
		n += 8
	}
	return n
}

// CheckPow reports whether nonce satisfies powBits against the current state.
func (c *Channel) CheckPow(nonce uint64, powBits uint32) bool {
	return leadingZeros(c.powDigest(nonce)) >= int(powBits)
}
