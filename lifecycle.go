package cell

// Lifecycle is implemented by the hooks an application attaches to a Genotype.
//
// OnInit runs once, on the first flush after the node was built. OnUpdate runs
// for every update pass the Nucleus delivers, that is after tracked state of the
// node changed.
type Lifecycle interface {
	OnInit(p *Phenotype)
	OnUpdate(p *Phenotype)
}

// Hooks is a Lifecycle backed by plain functions. Nil fields are skipped.
type Hooks struct {
	Init   func(p *Phenotype)
	Update func(p *Phenotype)
}

func (h Hooks) OnInit(p *Phenotype) {
	if h.Init != nil {
		h.Init(p)
	}
}

func (h Hooks) OnUpdate(p *Phenotype) {
	if h.Update != nil {
		h.Update(p)
	}
}

// WithLifecycle returns a copy of g whose $init and $update keys delegate to l.
func (g *Genotype) WithLifecycle(l Lifecycle) *Genotype {
	return g.Clone().Set(InitKey, l.OnInit).Set(UpdateKey, l.OnUpdate)
}

// Lifecycle returns the hooks declared by the $init and $update keys.
func (g *Genotype) Lifecycle() Lifecycle {
	return lifecycleOf(g)
}

func lifecycleOf(g *Genotype) Hooks {
	var h Hooks
	if v, ok := g.Get(InitKey); ok {
		h.Init = hook(v)
	}
	if v, ok := g.Get(UpdateKey); ok {
		h.Update = hook(v)
	}
	return h
}

func hook(v any) func(*Phenotype) {
	switch fn := v.(type) {
	case func(*Phenotype):
		return fn
	case func():
		return func(*Phenotype) { fn() }
	}
	return nil
}
