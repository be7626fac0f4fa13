package ext

// ParseSessionTicket decodes the session_ticket extension body (RFC
// 5077 §3.2): an empty body means "I support tickets, have none yet";
// a non-empty body is an opaque ticket to hand to the TicketCodec.
// Framing needs no validation beyond what the caller already enforced
// by length-delimiting the extension.
func ParseSessionTicket(body []byte) []byte {
	if len(body) == 0 {
		return nil
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out
}
