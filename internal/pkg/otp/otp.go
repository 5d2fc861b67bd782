package otp

import "crypto/rand"

// alphabet excludes I and O so codes read unambiguously on small screens.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

// maxUniform is the largest byte count that divides evenly into the
// alphabet. Bytes at or above it are discarded so every character is
// equally likely.
const maxUniform = 256 - 256%len(alphabet)

// Generate returns a random code of n characters drawn from the OTP alphabet.
func Generate(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUniform {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
