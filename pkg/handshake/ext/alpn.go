package ext

import "fmt"

// ParseALPN decodes the application_layer_protocol_negotiation extension
// (RFC 7301), returning the client's protocol name list in the order
// offered. Entries beyond limit are parsed but dropped.
func ParseALPN(body []byte, limit int) ([]string, error) {
	listLen, err := readUint16(body)
	if err != nil {
		return nil, fmt.Errorf("ext: alpn: %w", err)
	}
	body = body[2:]
	if listLen != len(body) || listLen == 0 {
		return nil, fmt.Errorf("ext: alpn: bad list length")
	}
	var out []string
	for len(body) > 0 {
		n := int(body[0])
		if n == 0 || len(body) < 1+n {
			return nil, fmt.Errorf("ext: alpn: bad protocol entry")
		}
		if limit <= 0 || len(out) < limit {
			out = append(out, string(body[1:1+n]))
		}
		body = body[1+n:]
	}
	return out, nil
}

// SelectALPN returns the server's most preferred protocol that also
// appears in the client's offer, per spec.md §4.3's "server-preference
// intersection"; ok is false when the intersection is empty.
func SelectALPN(serverPref, clientOffer []string) (proto string, ok bool) {
	offered := make(map[string]bool, len(clientOffer))
	for _, p := range clientOffer {
		offered[p] = true
	}
	for _, p := range serverPref {
		if offered[p] {
			return p, true
		}
	}
	return "", false
}
