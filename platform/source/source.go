package source

// Acker confirms the processing of a consumed state change.
type Acker interface {
	Ack(id string) error
}
