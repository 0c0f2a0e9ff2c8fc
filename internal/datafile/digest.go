package datafile

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest computes the BLAKE3 digest of the file at path, streaming it
// through the hasher.
func Digest(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// DigestBytes computes the BLAKE3 digest of b.
func DigestBytes(b []byte) [32]byte {
	return blake3.Sum256(b)
}

// FormatDigest returns the hex form of a digest.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}
