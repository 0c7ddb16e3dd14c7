package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// tableDigest hashes the fields that identify a stored table. Fields are
// length-prefixed so no two inputs share an encoding.
func tableDigest(name string, size uint32, version int) string {
	buf := make([]byte, 0, len(name)+16)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(name)))
	buf = append(buf, name...)
	buf = binary.BigEndian.AppendUint32(buf, size)
	buf = binary.BigEndian.AppendUint32(buf, uint32(version))
	return Hash(buf)
}

// Hash returns the hex SHA-256 of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
