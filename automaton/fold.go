package automaton

// foldByte maps ASCII upper-case letters to lower case and leaves every other
// byte untouched. Non-ASCII case folding is deliberately not performed.
func foldByte(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// opposite returns the other ASCII case of a letter and false for any other
// byte.
func opposite(b byte) (byte, bool) {
	switch {
	case 'a' <= b && b <= 'z':
		return b - ('a' - 'A'), true
	case 'A' <= b && b <= 'Z':
		return b + ('a' - 'A'), true
	}
	return 0, false
}

// foldBytes returns a lower-cased copy of p.
func foldBytes(p []byte) []byte {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = foldByte(b)
	}
	return out
}
