package hash

import "crypto/rand"

func defaultRandRead(b []byte) error {
	n, err := rand.Read(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return ErrShortRead
	}
	return nil
}
