package mqtt

// pendingMsg is a serialized message held for publishing after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of messages published while disconnected.
// When full, the oldest message is dropped. Not safe for concurrent use.
type outbox struct {
	msgs    []pendingMsg
	start   int // index of the oldest message
	n       int
	dropped int // messages dropped since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{msgs: make([]pendingMsg, capacity)}
}

// add queues msg and reports whether an older message had to be dropped.
func (o *outbox) add(msg pendingMsg) bool {
	c := len(o.msgs)
	if o.n == c {
		o.msgs[o.start] = msg
		o.start = (o.start + 1) % c
		o.dropped++
		return true
	}
	o.msgs[(o.start+o.n)%c] = msg
	o.n++
	return false
}

// drain returns queued messages oldest first and the number dropped.
func (o *outbox) drain() ([]pendingMsg, int) {
	if o.n == 0 {
		d := o.dropped
		o.dropped = 0
		return nil, d
	}
	out := make([]pendingMsg, o.n)
	for i := range out {
		out[i] = o.msgs[(o.start+i)%len(o.msgs)]
	}
	dropped := o.dropped
	*o = outbox{msgs: o.msgs}
	return out, dropped
}

func (o *outbox) len() int {
	return o.n
}
