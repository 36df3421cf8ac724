package cell

// Mutation kinds dispatched by a Reconciler.
const (
	MutationType       = "type"       // a node was created by the factory
	MutationBuild      = "build"      // a Genotype was built onto a node
	MutationUpdate     = "update"     // one key was reconciled
	MutationComponents = "components" // the children reconciler ran
	MutationReplace    = "replace"    // a node was replaced after a $type change
	MutationInit       = "init"       // a node was registered with the Nucleus

	// AnyMutation receives every kind.
	AnyMutation = "*"
)

// Mutation describes one step of reconciliation.
type Mutation struct {
	Kind  string
	Key   string
	Value any
	Node  *Phenotype
}

// MutationCallbacks stores the handlers observing reconciliation, by kind.
type MutationCallbacks struct {
	list map[string]*mutationHandlers
}

func NewMutationCallbacks() *MutationCallbacks {
	return &MutationCallbacks{make(map[string]*mutationHandlers)}
}

func (m *MutationCallbacks) Add(kind string, h *MutationHandler) *MutationCallbacks {
	mhs, ok := m.list[kind]
	if !ok {
		mhs = newMutationHandlers()
		m.list[kind] = mhs
	}
	mhs.Add(h)
	return m
}

func (m *MutationCallbacks) Remove(kind string, h *MutationHandler) *MutationCallbacks {
	mhs, ok := m.list[kind]
	if !ok {
		return m
	}
	mhs.Remove(h)
	return m
}

// DispatchEvent runs the handlers registered for the mutation kind, then the
// ones registered for AnyMutation.
func (m *MutationCallbacks) DispatchEvent(evt Mutation) {
	if m == nil {
		return
	}
	if mhs, ok := m.list[evt.Kind]; ok {
		mhs.Handle(evt)
	}
	if mhs, ok := m.list[AnyMutation]; ok {
		mhs.Handle(evt)
	}
}

type mutationHandlers struct {
	list []*MutationHandler
}

func newMutationHandlers() *mutationHandlers {
	return &mutationHandlers{make([]*MutationHandler, 0)}
}

func (m *mutationHandlers) Add(h *MutationHandler) *mutationHandlers {
	m.list = append(m.list, h)
	return m
}

func (m *mutationHandlers) Remove(h *MutationHandler) *mutationHandlers {
	for k, v := range m.list {
		if v == h {
			m.list = append(m.list[:k], m.list[k+1:]...)
			break
		}
	}
	return m
}

// Handle calls the handlers in registration order until one returns true.
func (m *mutationHandlers) Handle(evt Mutation) {
	for _, h := range m.list {
		if h.Handle(evt) {
			return
		}
	}
}

// MutationHandler wraps a callback run after a reconciliation step.
// Returning true stops the remaining handlers of the same kind.
type MutationHandler struct {
	Fn func(Mutation) bool
}

func NewMutationHandler(f func(evt Mutation) bool) *MutationHandler {
	return &MutationHandler{f}
}

func (m *MutationHandler) Handle(evt Mutation) bool {
	return m.Fn(evt)
}
