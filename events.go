package ecs

// ComponentEvent is one Added or Removed notification (spec §3.8). Value
// carries the new value for Added, or the prior value for Removed, when the
// caller supplies one; both event kinds also carry TypeID alone when no
// value is available, resolving spec §9 open question 4.
type ComponentEvent struct {
	Entity Entity
	TypeID TypeID
	Value  any
}

// EventChannel is a FIFO buffer of component events, drained by consumers
// each frame. Nothing empties it automatically at frame end: events stay
// buffered until a consumer calls Drain or Clear, and there is no
// subscription mechanism (spec §3.8). Grounded on
// edwinsyarief-lazyecs/eventbus.go's type-keyed registration, narrowed here
// to the two fixed Added/Removed channels the spec names instead of an
// arbitrary pub/sub bus.
type EventChannel struct {
	buf []ComponentEvent
}

// Push appends an event to the channel.
func (c *EventChannel) Push(e ComponentEvent) {
	c.buf = append(c.buf, e)
}

// Drain invokes handler for every buffered event in FIFO order, then clears
// the channel.
func (c *EventChannel) Drain(handler func(ComponentEvent)) {
	for _, e := range c.buf {
		handler(e)
	}
	c.buf = c.buf[:0]
}

// Snapshot returns a copy of the currently buffered events without draining
// them, for subsystems that need to read Added/Removed ahead of a generic
// consumer drain.
func (c *EventChannel) Snapshot() []ComponentEvent {
	out := make([]ComponentEvent, len(c.buf))
	copy(out, c.buf)
	return out
}

// Clear discards any residual events. The world and scheduler never call it;
// a caller that wants residue dropped at frame end calls it explicitly.
func (c *EventChannel) Clear() {
	c.buf = c.buf[:0]
}

// Len reports the number of buffered events.
func (c *EventChannel) Len() int { return len(c.buf) }
