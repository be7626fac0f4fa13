package handshake

import "github.com/luxfi/tls12/pkg/herr"

// AlertLevel and AlertDescription are the wire values RFC 5246 §7.2
// defines for the Alert protocol content type.
type AlertLevel uint8

const (
	AlertLevelWarning AlertLevel = 1
	AlertLevelFatal   AlertLevel = 2
)

type AlertDescription uint8

const (
	AlertCloseNotify            AlertDescription = 0
	AlertUnexpectedMessage      AlertDescription = 10
	AlertDecryptionFailed       AlertDescription = 21
	AlertHandshakeFailure       AlertDescription = 40
	AlertBadCertificate         AlertDescription = 42
	AlertUnsupportedCertificate AlertDescription = 43
	AlertIllegalParameter       AlertDescription = 47
	AlertDecodeError            AlertDescription = 50
	AlertDecryptError           AlertDescription = 51
	AlertProtocolVersion        AlertDescription = 70
	AlertInsufficientSecurity   AlertDescription = 71
	AlertInternalError          AlertDescription = 80
	AlertInappropriateFallback  AlertDescription = 86
	AlertUnrecognizedName       AlertDescription = 112
	AlertNoApplicationProtocol  AlertDescription = 120
)

// Alert pairs the wire-level alert this library would emit with the
// underlying stable herr.Code, so callers can both send the correct
// byte pair and programmatically branch on the kind of failure.
type Alert struct {
	Level AlertDescription
	Code  herr.Code
	Err   error
}

func (a *Alert) Error() string {
	if a.Err != nil {
		return a.Err.Error()
	}
	return a.Code.String()
}

func (a *Alert) Unwrap() error { return a.Err }

// alertFor maps a herr.Code to the TLS 1.2 alert description spec.md §6/§7
// and RFC 5246 §7.2.2 associate with it.
func alertFor(code herr.Code) AlertDescription {
	switch code {
	case herr.ProtocolVersion:
		return AlertProtocolVersion
	case herr.DecodeError:
		return AlertDecodeError
	case herr.HandshakeFailure:
		return AlertHandshakeFailure
	case herr.InappropriateFallback:
		return AlertInappropriateFallback
	case herr.NoApplicationProtocol:
		return AlertNoApplicationProtocol
	case herr.UnrecognizedName:
		return AlertUnrecognizedName
	case herr.InvalidKey, herr.VerifyFailed, herr.SigLenMismatch:
		return AlertDecryptError
	case herr.BadHSClientHello, herr.BadHSServerHello, herr.BadHSCertificate,
		herr.BadHSKeyExchange, herr.BadHSCertificateVerify, herr.BadHSFinished:
		return AlertHandshakeFailure
	default:
		return AlertInternalError
	}
}

// fatal wraps code/cause into a fatal *Alert, the disposition spec.md §7
// calls "emit a TLS alert and return a BAD_HS_* error; no further bytes
// are consumed."
func fatal(code herr.Code, cause error) *Alert {
	return &Alert{Level: alertFor(code), Code: code, Err: herr.Wrap(code, cause)}
}
