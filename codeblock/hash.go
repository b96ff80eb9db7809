package codeblock

import "github.com/cespare/xxhash/v2"

// Hash identifies a code block's source in logs.
type Hash uint64

func HashOf(source string) Hash {
	return Hash(xxhash.Sum64String(source))
}

const hashAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// String renders the hash as six base62 characters.
func (h Hash) String() string {
	var buf [6]byte
	v := uint64(h)
	for i := range buf {
		buf[i] = hashAlphabet[v%uint64(len(hashAlphabet))]
		v /= uint64(len(hashAlphabet))
	}
	return string(buf[:])
}
