package round

// Kind distinguishes a broadcast envelope from a peer-to-peer one, per
// spec.md §6's message envelope: "{..., kind: {Bcast, P2p{to: u32}}, ...}".
type Kind uint8

const (
	KindBcast Kind = iota
	KindP2p
)

// Envelope is the on-the-wire framing record. Payload is the inner
// round-specific Bcast/P2p struct, itself serialized with pkg/serialize;
// Envelope's own encoding is opaque to callers (spec.md: "the library treats
// bytes as opaque").
type Envelope struct {
	ProtocolID uint16
	SessionID  []byte
	Round      Number
	From       uint32
	Kind       Kind
	To         uint32 // only meaningful when Kind == KindP2p
	Payload    []byte
}
