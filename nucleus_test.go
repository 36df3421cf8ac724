package cell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrbsprite/cell"
)

type hookCounter struct {
	inits, updates int
}

func (h *hookCounter) genotype(keyvalues ...any) *cell.Genotype {
	return cell.Describe(keyvalues...).WithLifecycle(cell.Hooks{
		Init:   func(*cell.Phenotype) { h.inits++ },
		Update: func(*cell.Phenotype) { h.updates++ },
	})
}

func TestUpdateGuards(t *testing.T) {
	r, _ := newReconciler()
	nu := r.Nucleus

	detachedNative, err := r.Document.CreateElement("div")
	require.NoError(t, err)
	detached := cell.Wrap(detachedNative)
	var calls int
	detached.Genotype = cell.Describe("$update", func() { calls++ })
	assert.False(t, nu.Update(detached))
	assert.Equal(t, 0, calls)

	_, node := attachedDiv(t, r, "div")
	node.Genotype = cell.Describe("$update", func() { calls++ })
	node.Meta.Updated = true
	assert.False(t, nu.Update(node))
	assert.Equal(t, 0, calls)

	node.Meta.Updated = false
	assert.True(t, nu.Update(node))
	assert.Equal(t, 1, calls)
	assert.True(t, node.Meta.Updated)
}

func TestUpdateRunsHookOnce(t *testing.T) {
	r, _ := newReconciler()
	nu := r.Nucleus
	_, node := attachedDiv(t, r, "div")
	node.Genotype = cell.Describe(
		"_counter", 0,
		"$update", func(p *cell.Phenotype) {
			v, _ := p.Get("_counter")
			p.Set("_counter", v.(int)+1)
		},
	)

	nu.Build(node)
	v, ok := node.Get("_counter")
	require.True(t, ok)
	assert.Equal(t, 0, v)

	assert.True(t, nu.Update(node))
	v, _ = node.Get("_counter")
	assert.Equal(t, 1, v)

	assert.False(t, nu.Update(node))
	v, _ = node.Get("_counter")
	assert.Equal(t, 1, v)
}

func TestInitDefersHooks(t *testing.T) {
	r, _ := newReconciler()
	_, node := attachedDiv(t, r, "div")
	h := &hookCounter{}
	node.Genotype = h.genotype()

	inits := count(r, cell.MutationInit)
	r.Init(node)

	assert.Equal(t, 1, inits.n)
	assert.True(t, node.Bound())
	assert.Equal(t, 1, r.Nucleus.Pending())
	assert.False(t, node.Meta.Updated)
	assert.Equal(t, 0, h.inits)
	assert.Equal(t, 0, h.updates)
}

func TestFlush(t *testing.T) {
	r, doc := newReconciler()
	h := &hookCounter{}
	p, err := r.Append(cell.Wrap(doc.Body()), h.genotype("$type", "p", "_x", 1))
	require.NoError(t, err)
	assert.Equal(t, 0, h.inits)

	assert.Equal(t, 0, r.Nucleus.Flush())
	assert.Equal(t, 1, h.inits)
	assert.Equal(t, 0, h.updates)
	assert.False(t, p.Meta.Updated)
	assert.Equal(t, 0, r.Nucleus.Pending())

	assert.Equal(t, 0, r.Nucleus.Flush())
	assert.Equal(t, 0, h.updates)

	p.Set("_x", 2)
	p.Set("_x", 3)
	assert.Equal(t, 1, r.Nucleus.Pending())
	assert.Equal(t, 1, r.Nucleus.Flush())
	assert.Equal(t, 1, h.inits)
	assert.Equal(t, 1, h.updates)
	assert.True(t, p.Meta.Updated)

	assert.Equal(t, 0, r.Nucleus.Flush())
	p.Set("_x", 4)
	assert.Equal(t, 1, r.Nucleus.Flush())
	assert.Equal(t, 2, h.updates)
}

func TestFlushInvalidatedBeforeInit(t *testing.T) {
	r, doc := newReconciler()
	h := &hookCounter{}
	p, err := r.Append(cell.Wrap(doc.Body()), h.genotype("$type", "p", "_x", 1))
	require.NoError(t, err)

	p.Set("_x", 2)
	assert.Equal(t, 1, r.Nucleus.Pending())
	assert.Equal(t, 1, r.Nucleus.Flush())
	assert.Equal(t, 1, h.inits)
	assert.Equal(t, 1, h.updates)
}

func TestFlushOrder(t *testing.T) {
	r, doc := newReconciler()
	var order []string
	record := func(p *cell.Phenotype) { order = append(order, p.Type()) }

	ul, err := r.Append(cell.Wrap(doc.Body()), cell.Describe(
		"$type", "ul",
		"$init", record,
		"_n", 0,
		"$components", []*cell.Genotype{
			cell.Describe("$type", "li", "$init", record),
			cell.Describe("$type", "p", "$init", record),
		},
	))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Nucleus.Flush())
	assert.Equal(t, []string{"li", "p", "ul"}, order)

	ul.Set("_n", 1)
	assert.Equal(t, 1, r.Nucleus.Flush())
	assert.Equal(t, []string{"li", "p", "ul"}, order)
}

func TestFlushDropsDetached(t *testing.T) {
	r, doc := newReconciler()
	body := cell.Wrap(doc.Body())
	h := &hookCounter{}
	p, err := r.Append(body, h.genotype("$type", "p", "_x", 1))
	require.NoError(t, err)
	p.Set("_x", 2)
	require.NoError(t, body.RemoveChild(p))

	assert.Equal(t, 0, r.Nucleus.Flush())
	assert.Equal(t, 0, h.inits)
	assert.Equal(t, 0, h.updates)
	assert.Equal(t, 0, r.Nucleus.Pending())
}

func TestFlushInitsAfterLateAttach(t *testing.T) {
	r, doc := newReconciler()
	body := cell.Wrap(doc.Body())
	h := &hookCounter{}
	g := h.genotype("$type", "p")

	p, err := r.Type(g, "")
	require.NoError(t, err)
	p, err = r.Build(p, g)
	require.NoError(t, err)

	assert.Equal(t, 0, r.Nucleus.Flush())
	assert.Equal(t, 0, h.inits)
	assert.Equal(t, 0, r.Nucleus.Pending())

	require.NoError(t, body.AppendChild(p))
	assert.Equal(t, 1, r.Nucleus.Pending())
	r.Nucleus.Flush()
	assert.Equal(t, 1, h.inits)

	require.NoError(t, body.RemoveChild(p))
	require.NoError(t, body.AppendChild(p))
	assert.Equal(t, 0, r.Nucleus.Pending())
	r.Nucleus.Flush()
	assert.Equal(t, 1, h.inits)
}

func TestFlushDefersRequeued(t *testing.T) {
	r, doc := newReconciler()
	var other *cell.Phenotype
	var otherUpdates int
	body := cell.Wrap(doc.Body())

	var err error
	other, err = r.Append(body, cell.Describe("$type", "span", "_n", 0, "$update", func() { otherUpdates++ }))
	require.NoError(t, err)
	r.Nucleus.Flush()
	require.Equal(t, 0, otherUpdates)

	_, err = r.Append(body, cell.Describe("$type", "p", "$init", func() { other.Set("_n", 1) }))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Nucleus.Flush())
	assert.Equal(t, 0, otherUpdates)
	assert.Equal(t, 1, r.Nucleus.Pending())

	assert.Equal(t, 1, r.Nucleus.Flush())
	assert.Equal(t, 1, otherUpdates)
}

func TestReset(t *testing.T) {
	r, doc := newReconciler()
	_, err := r.Append(cell.Wrap(doc.Body()), cell.Describe("$type", "p"))
	require.NoError(t, err)
	require.Equal(t, 1, r.Nucleus.Pending())

	r.Nucleus.Reset()
	assert.Equal(t, 0, r.Nucleus.Pending())
	assert.Equal(t, 0, r.Nucleus.Flush())
}

func TestSetUnboundDoesNotQueue(t *testing.T) {
	r, _ := newReconciler()
	_, node := attachedDiv(t, r, "div")
	node.Meta.Updated = true

	node.Set("_x", 1)
	assert.True(t, node.Meta.Updated)
	assert.Equal(t, 0, r.Nucleus.Pending())
	v, ok := node.Get("_x")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestRunFlushesAfterWork(t *testing.T) {
	r, doc := newReconciler()
	body := cell.Wrap(doc.Body())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- r.Nucleus.Run(ctx)
	}()

	var updates int
	initialized := make(chan string, 1)
	later := make(chan int, 1)
	r.Nucleus.Do(func() {
		_, err := r.Append(body, cell.Describe(
			"$type", "p",
			"$init", func(p *cell.Phenotype) {
				initialized <- p.Type()
				r.Nucleus.Do(func() { later <- updates })
			},
			"$update", func() { updates++ },
		))
		assert.NoError(t, err)
	})

	select {
	case typ := <-initialized:
		assert.Equal(t, "p", typ)
	case <-time.After(2 * time.Second):
		t.Fatal("init was not delivered")
	}
	select {
	case n := <-later:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not advance")
	}

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
