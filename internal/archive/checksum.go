package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// ChecksumFileName is the checksum manifest written next to the archive.
const ChecksumFileName = "checksums.txt"

const (
	checksumAlgorithmConstant    = "SHA256"
	checksumLineTemplateConstant = "%s %s  %s\n"
)

// ChecksumLine formats one manifest line: algorithm name, hex digest, and the
// archive file name, in that order.
func ChecksumLine(fileName string, hexDigest string) string {
	return fmt.Sprintf(checksumLineTemplateConstant, checksumAlgorithmConstant, hexDigest, fileName)
}

func newDigest() hash.Hash {
	return sha256.New()
}

func hexDigest(digest hash.Hash) string {
	return hex.EncodeToString(digest.Sum(nil))
}
