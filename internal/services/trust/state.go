package trust

type State string

const (
	StateIdle               State = "idle"
	StateSubmitting         State = "submitting"
	StatePredictionPending  State = "prediction_pending"
	StatePredictionReceived State = "prediction_received"
	StateExplanationPending State = "explanation_pending"
	StateComplete           State = "complete"
	StateFailed             State = "failed"
)

func (s State) Terminal() bool { return s == StateComplete || s == StateFailed }

// Observer sees every state change of a single analysis. kind is empty unless to is StateFailed.
type Observer interface {
	Transition(from, to State, kind ErrorKind)
}

type ObserverFunc func(from, to State, kind ErrorKind)

func (f ObserverFunc) Transition(from, to State, kind ErrorKind) { f(from, to, kind) }

// run tracks one analysis through its states.
type run struct {
	state     State
	observers []Observer
}

func newRun(observers ...Observer) *run {
	r := &run{state: StateIdle}
	for _, o := range observers {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
	return r
}

func (r *run) to(next State) {
	r.move(next, "")
}

func (r *run) fail(err *Error) *Error {
	r.move(StateFailed, err.Kind)
	return err
}

func (r *run) move(next State, kind ErrorKind) {
	if r.state.Terminal() {
		return
	}
	prev := r.state
	r.state = next
	for _, o := range r.observers {
		o.Transition(prev, next, kind)
	}
}
