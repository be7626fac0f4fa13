package ext

import "fmt"

// ParseRenegotiationInfo validates the renegotiation_info extension
// (RFC 5746 §3.2): on an initial handshake this repository supports, the
// body must be exactly one zero length-byte and nothing else.
func ParseRenegotiationInfo(body []byte) error {
	if len(body) != 1 || body[0] != 0 {
		return fmt.Errorf("ext: renegotiation_info: expected single zero byte")
	}
	return nil
}
