// Package uaerrors models the OPC-UA StatusCode-shaped errors this
// repository's components raise, grounded on the teacher's
// securechannel.StatusReport (typed code, general/fatal split, an
// Error() implementation) but re-targeted at OPC-UA's flat 32-bit
// status-code space instead of Matter's GeneralCode/ProtocolCode pair.
package uaerrors

import "fmt"

// StatusCode is an OPC-UA status code. Only the small subset this
// repository's components can raise is enumerated; a full status-code
// table belongs to the decode/session layers this spec excludes.
type StatusCode uint32

// Status codes this repository raises (Section 7).
const (
	// StatusGood indicates success; components in this repository never
	// return it as an error, but it is defined for completeness of the table.
	StatusGood StatusCode = 0x00000000

	// BadTcpEndpointUrlInvalid is returned when an endpoint URL does not
	// resolve to a registered server (Section 4.6, 4.7).
	BadTcpEndpointUrlInvalid StatusCode = 0x807D0000

	// BadSecurityChecksFailed is returned when a cryptographic primitive
	// invoked by a SecurityDelegate fails (cipher init, sign, encrypt).
	BadSecurityChecksFailed StatusCode = 0x80130000

	// BadTcpInternalError covers configuration/geometry failures that are
	// not the peer's fault: a non-positive maxBodySize or a plaintext size
	// that fails the block-size divisibility assertion.
	BadTcpInternalError StatusCode = 0x807A0000

	// BadRequestTooLarge is returned when a message would require more
	// chunks than a configured policy limit allows.
	BadRequestTooLarge StatusCode = 0x80B80000
)

// Kind classifies the cause of a Status, independent of the numeric code,
// so callers can decide recovery strategy (Section 7's Recovery column)
// without switching on raw StatusCode values.
type Kind int

const (
	// KindInvalidConfiguration: non-positive maxBodySize from geometry. Fatal for the channel.
	KindInvalidConfiguration Kind = iota
	// KindInvalidGeometry: plaintext size not divisible by block size. Fatal; indicates a bug.
	KindInvalidGeometry
	// KindSecurityChecksFailed: a crypto primitive failed. Fatal for the channel.
	KindSecurityChecksFailed
	// KindPayloadTooLarge: computed chunk count exceeds a policy limit. Fatal for the message only.
	KindPayloadTooLarge
	// KindEndpointUrlInvalid: demultiplexer lookup missed. Caller should close the connection.
	KindEndpointUrlInvalid
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "InvalidConfiguration"
	case KindInvalidGeometry:
		return "InvalidGeometry"
	case KindSecurityChecksFailed:
		return "SecurityChecksFailed"
	case KindPayloadTooLarge:
		return "PayloadTooLarge"
	case KindEndpointUrlInvalid:
		return "EndpointUrlInvalid"
	default:
		return "Unknown"
	}
}

// Status is the error type all fatal-to-channel or fatal-to-message
// conditions in this repository are reported as.
type Status struct {
	Kind   Kind
	Code   StatusCode
	Reason string
	Cause  error
}

// New creates a Status with the given kind, wire status code, and reason.
func New(kind Kind, code StatusCode, reason string) *Status {
	return &Status{Kind: kind, Code: code, Reason: reason}
}

// Wrap creates a Status that carries an underlying cause (e.g. a crypto
// primitive's own error).
func Wrap(kind Kind, code StatusCode, reason string, cause error) *Status {
	return &Status{Kind: kind, Code: code, Reason: reason, Cause: cause}
}

// Error implements the error interface.
func (s *Status) Error() string {
	if s.Cause != nil {
		return fmt.Sprintf("%s (0x%08X): %s: %v", s.Kind, uint32(s.Code), s.Reason, s.Cause)
	}
	return fmt.Sprintf("%s (0x%08X): %s", s.Kind, uint32(s.Code), s.Reason)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (s *Status) Unwrap() error {
	return s.Cause
}

// InvalidConfiguration builds the error geometry computation raises when
// maxBodySize is non-positive.
func InvalidConfiguration(reason string) *Status {
	return New(KindInvalidConfiguration, BadTcpInternalError, reason)
}

// InvalidGeometry builds the error the encoder raises when the
// plaintext-size/block-size divisibility assertion fails.
func InvalidGeometry(reason string) *Status {
	return New(KindInvalidGeometry, BadTcpInternalError, reason)
}

// SecurityChecksFailed wraps a crypto primitive failure.
func SecurityChecksFailed(reason string, cause error) *Status {
	return Wrap(KindSecurityChecksFailed, BadSecurityChecksFailed, reason, cause)
}

// PayloadTooLarge builds the error raised when a message would exceed a
// configured chunk-count policy limit.
func PayloadTooLarge(reason string) *Status {
	return New(KindPayloadTooLarge, BadRequestTooLarge, reason)
}

// EndpointURLInvalid builds the error the demultiplexer's caller raises
// when no server matches a Hello-frame endpoint URL.
func EndpointURLInvalid(reason string) *Status {
	return New(KindEndpointUrlInvalid, BadTcpEndpointUrlInvalid, reason)
}
