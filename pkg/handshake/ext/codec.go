// Package ext decodes the ClientHello extensions spec.md §4.3 names:
// SNI, signature algorithms, supported curves, EC point formats,
// extended master secret, session ticket, ALPN, and renegotiation info.
// Each parser is handed one extension's already-length-delimited body
// (the handshake FSM is responsible for framing); none of them retain
// state across calls, which keeps them reusable from both the
// incremental ClientHello parser and tests.
package ext

import "fmt"

// Wire extension type identifiers, RFC 6066/4492/8422/5746/7627/7301/5077.
const (
	TypeServerName            uint16 = 0
	TypeSupportedGroups       uint16 = 10
	TypeECPointFormats        uint16 = 11
	TypeSignatureAlgorithms   uint16 = 13
	TypeALPN                  uint16 = 16
	TypeExtendedMasterSecret  uint16 = 23
	TypeSessionTicket         uint16 = 35
	TypeRenegotiationInfo     uint16 = 0xff01
)

// Header is a decoded (type, length) extension header as it appears in
// the ClientHello extensions block.
type Header struct {
	Type   uint16
	Length int
}

// ReadHeader decodes the 4-byte extension header at the start of buf.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < 4 {
		return Header{}, fmt.Errorf("ext: short extension header")
	}
	return Header{
		Type:   uint16(buf[0])<<8 | uint16(buf[1]),
		Length: int(buf[2])<<8 | int(buf[3]),
	}, nil
}

func readUint16(buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("ext: short uint16")
	}
	return int(buf[0])<<8 | int(buf[1]), nil
}
