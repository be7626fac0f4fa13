package ext

import "fmt"

// SigHashAlg is a TLS 1.2 (hash, signature) algorithm pair (RFC 5246 §7.4.1.4.1).
type SigHashAlg struct {
	Hash uint8
	Sig  uint8
}

// ParseSignatureAlgorithms decodes the signature_algorithms extension,
// keeping at most one hash per signature algorithm (the first one seen
// in the client's list, which is also its preference order), and
// capping the result at limit entries — excess pairs are parsed (so
// framing stays correct) but dropped, per spec.md §4.3's "one hash per
// sig is kept."
func ParseSignatureAlgorithms(body []byte, limit int) ([]SigHashAlg, error) {
	listLen, err := readUint16(body)
	if err != nil {
		return nil, fmt.Errorf("ext: signature_algorithms: %w", err)
	}
	body = body[2:]
	if listLen != len(body) || listLen%2 != 0 {
		return nil, fmt.Errorf("ext: signature_algorithms: bad list length")
	}
	seenSig := make(map[uint8]bool)
	var out []SigHashAlg
	for i := 0; i+1 < len(body); i += 2 {
		hash, sig := body[i], body[i+1]
		if seenSig[sig] {
			continue
		}
		seenSig[sig] = true
		if limit <= 0 || len(out) < limit {
			out = append(out, SigHashAlg{Hash: hash, Sig: sig})
		}
	}
	return out, nil
}
