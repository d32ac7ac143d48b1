package ports

// EntropySource fills buffers with cryptographically secure random bytes.
type EntropySource interface {
	// Fill writes len(buf) random bytes into buf.
	Fill(buf []byte) error
}
