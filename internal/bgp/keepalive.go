package bgp

// KeepaliveMessage carries no body; its presence on the wire is the
// entire signal.
type KeepaliveMessage struct{}
