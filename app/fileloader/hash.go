package fileloader

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

// FileHashKey is the fixed 32-byte key used for content hashes, so the same
// bytes always hash the same way.
var FileHashKey = []byte("gridview content hash key\x00\x00\x00\x00\x00\x00\x00")

// CalculateFileHash calculates a HighwayHash of the file content
func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash, err := highwayhash.New(FileHashKey)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// hashParts hashes the concatenation of parts
func hashParts(parts ...[]byte) (string, error) {
	hash, err := highwayhash.New(FileHashKey)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	for _, p := range parts {
		hash.Write(p)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
