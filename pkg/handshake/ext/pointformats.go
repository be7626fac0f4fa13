package ext

import "fmt"

const pointFormatUncompressed = 0

// ParseECPointFormats decodes the ec_point_formats extension and reports
// whether the client's list includes the uncompressed format (which a
// TLS 1.2 server must always be able to use) and whether it includes any
// compressed format. The handshake uses this only to validate the
// extension: neither flag is recorded on the handshake context. This
// server never emits compressed points itself.
func ParseECPointFormats(body []byte) (hasUncompressed, hasCompressed bool, err error) {
	if len(body) < 1 {
		return false, false, fmt.Errorf("ext: ec_point_formats: empty")
	}
	n := int(body[0])
	if len(body) != 1+n {
		return false, false, fmt.Errorf("ext: ec_point_formats: length mismatch")
	}
	for _, f := range body[1:] {
		if f == pointFormatUncompressed {
			hasUncompressed = true
		} else {
			hasCompressed = true
		}
	}
	return hasUncompressed, hasCompressed, nil
}
