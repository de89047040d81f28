package project

import (
	"crypto/sha256"
	"io"
	"os"
)

// Digest - фиксированный 256 битный хеш содержимого файла.
type Digest [32]byte

// HashFile возвращает дайджест содержимого файла.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}

// HashBytes возвращает дайджест байтового среза.
func HashBytes(b []byte) Digest {
	return sha256.Sum256(b)
}

// Combine строит составной хеш: H( content || extra1 || extra2 ... ).
// Порядок extras должен быть детерминированным.
func Combine(content Digest, extras ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range extras {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
