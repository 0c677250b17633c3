package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmit_PassesInvocation(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.On("order.*", h))
	require.NoError(t, r.Emit("order.created", 42, "eur"))

	require.Len(t, h.calls, 1)
	inv := h.calls[0]
	assert.Equal(t, "order.created", inv.Event)
	assert.Equal(t, "order.*", inv.Pattern)
	assert.Nil(t, inv.Context)
	assert.False(t, inv.Bound)
	assert.Equal(t, []any{42, "eur"}, inv.Args)
	assert.Equal(t, 42, inv.Arg(0))
	assert.Nil(t, inv.Arg(5))
}

func TestEmitWithContext(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}
	type cart struct{ id string }
	bound := &cart{id: "c-1"}

	require.NoError(t, r.On("cart.updated", h))
	require.NoError(t, r.EmitWithContext("cart.updated", bound, "sku-1"))

	require.Len(t, h.calls, 1)
	assert.Same(t, bound, h.calls[0].Context)
	assert.True(t, h.calls[0].Bound)
	assert.Equal(t, []any{"sku-1"}, h.calls[0].Args)
}

func TestEmitWithContext_NilIsStillBound(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.On("cart.updated", h))
	require.NoError(t, r.EmitWithContext("cart.updated", nil, "sku-1"))

	require.Len(t, h.calls, 1)
	assert.Nil(t, h.calls[0].Context)
	assert.True(t, h.calls[0].Bound)
}

func TestEmit_EmptyPatternIsExact(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.On("", h))
	assert.True(t, r.Has(""))

	require.NoError(t, r.Emit("a"))
	assert.Empty(t, h.calls)

	require.NoError(t, r.Emit(""))
	assert.Len(t, h.calls, 1)

	require.NoError(t, r.Off("", h))
	assert.False(t, r.Has(""))
}

func TestEmit_WildcardMiddleSegment(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.On("a.*.b", h))

	require.NoError(t, r.Emit("a.mid.b"))
	assert.Len(t, h.calls, 1)

	require.NoError(t, r.Emit("a.b"))
	assert.Len(t, h.calls, 1)
}

func TestEmit_WildcardIsSubstringMatch(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.On("a.*", h))

	for _, name := range []string{"a.b", "a.b.c", "x.a.b"} {
		require.NoError(t, r.Emit(name))
	}
	assert.Len(t, h.calls, 3)

	require.NoError(t, r.Emit("a"))
	assert.Len(t, h.calls, 3)
}

func TestEmit_ExactPatternNeverExpands(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.On("a.b", h))

	require.NoError(t, r.Emit("x.a.b"))
	require.NoError(t, r.Emit("a.b.c"))
	assert.Empty(t, h.calls)
}

func TestEmit_AllMatchedSetsInTableOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	var trace []string

	patterns := []string{
		"shop.*.created",
		"shop.order.*",
		"shop.order.created",
		"order.*",
		"shop.*.*",
	}
	for _, p := range patterns {
		require.NoError(t, r.On(p, &recorder{name: p, trace: &trace}))
	}
	require.NoError(t, r.On("shop.cart.*", &recorder{name: "unrelated", trace: &trace}))

	require.NoError(t, r.Emit("shop.order.created"))

	assert.Equal(t, patterns, trace)
}

func TestEmit_HandlersInRegistrationOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	var trace []string

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, r.On("x", &recorder{name: name, trace: &trace}))
	}

	require.NoError(t, r.Emit("x"))
	assert.Equal(t, []string{"first", "second", "third"}, trace)
}

func TestEmit_CapacityTwo(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.On("x", h, WithCapacity(2)))

	require.NoError(t, r.Emit("x"))
	assert.Equal(t, 1, r.Subscriptions("x")[0].Remaining)

	require.NoError(t, r.Emit("x"))
	assert.False(t, r.Has("x"))

	require.NoError(t, r.Emit("x"))
	assert.Len(t, h.calls, 2)
}

func TestEmit_ExpiryKeepsSiblings(t *testing.T) {
	r, _ := newTestRegistry(t)
	once, always := &recorder{}, &recorder{}

	require.NoError(t, r.Once("x", once))
	require.NoError(t, r.On("x", always))

	require.NoError(t, r.Emit("x"))
	require.NoError(t, r.Emit("x"))

	assert.Len(t, once.calls, 1)
	assert.Len(t, always.calls, 2)
	assert.Equal(t, 1, r.CountByPattern("x"))
}

func TestEmit_SameHandlerOnTwoPatterns(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &recorder{}

	require.NoError(t, r.Once("a.*", h))
	require.NoError(t, r.Once("a.b", h))

	require.NoError(t, r.Emit("a.b"))

	assert.Len(t, h.calls, 2)
	assert.Nil(t, r.Patterns())
}

func TestEmit_ExpiryReleasesHandler(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &releaser{}

	require.NoError(t, r.Once("a.*", h))
	require.NoError(t, r.On("a.b", h, WithCapacity(2)))

	require.NoError(t, r.Emit("a.b"))
	assert.Equal(t, 0, h.released)

	require.NoError(t, r.Emit("a.b"))
	assert.Equal(t, 1, h.released)
	assert.Equal(t, 0, r.Count())
}

func TestEmit_Unmatched(t *testing.T) {
	r, logs := newTestRegistry(t)

	require.NoError(t, r.On("order.created", &recorder{}))
	require.NoError(t, r.Emit("order.deleted"))

	entries := logs.FilterMessage("event has no matched configuration").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "order.deleted", entries[0].ContextMap()["event"])
}

func TestEmit_HandlerErrorStopsEmission(t *testing.T) {
	r, _ := newTestRegistry(t)
	errBoom := errors.New("boom")
	before, failing, after := &recorder{}, &recorder{err: errBoom}, &recorder{}

	require.NoError(t, r.On("x.*", before))
	require.NoError(t, r.Once("x.*", failing))
	require.NoError(t, r.On("x.*", after))
	later := &recorder{}
	require.NoError(t, r.On("x.y", later))

	err := r.Emit("x.y")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	var he *HandlerError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "x.*", he.Pattern)
	assert.Equal(t, "x.y", he.Event)
	assert.Equal(t, r.Subscriptions("x.*")[1].ID, he.SubscriptionID)

	assert.Len(t, before.calls, 1)
	assert.Len(t, failing.calls, 1)
	assert.Empty(t, after.calls)
	assert.Empty(t, later.calls)

	// The failed invocation does not consume capacity.
	assert.Equal(t, 1, r.Subscriptions("x.*")[1].Remaining)
}

func TestEmit_PanicPropagates(t *testing.T) {
	r, _ := newTestRegistry(t)
	after := &recorder{}

	require.NoError(t, r.On("x", &recorder{fn: func(Invocation) { panic("handler panic") }}))
	require.NoError(t, r.On("x", after))

	assert.PanicsWithValue(t, "handler panic", func() {
		_ = r.Emit("x")
	})
	assert.Empty(t, after.calls)
}

func TestEmit_HandlerRemovesLaterSibling(t *testing.T) {
	r, _ := newTestRegistry(t)
	victim := &recorder{}
	remover := &recorder{fn: func(Invocation) {
		require.NoError(t, r.Off("x", victim))
	}}

	require.NoError(t, r.On("x", remover))
	require.NoError(t, r.On("x", victim))

	require.NoError(t, r.Emit("x"))

	assert.Len(t, remover.calls, 1)
	assert.Empty(t, victim.calls)
	assert.Equal(t, 1, r.Count())
}

func TestEmit_HandlerRemovesLaterPattern(t *testing.T) {
	r, _ := newTestRegistry(t)
	victim := &recorder{}
	remover := &recorder{fn: func(Invocation) {
		require.NoError(t, r.Off("a.b"))
	}}

	require.NoError(t, r.On("a.*", remover))
	require.NoError(t, r.On("a.b", victim))

	require.NoError(t, r.Emit("a.b"))

	assert.Empty(t, victim.calls)
	assert.False(t, r.Has("a.b"))
}

func TestEmit_HandlerRemovesItself(t *testing.T) {
	r, _ := newTestRegistry(t)
	sibling := &recorder{}
	self := &recorder{}
	self.fn = func(Invocation) {
		require.NoError(t, r.Off("x", self))
	}

	require.NoError(t, r.On("x", self, WithCapacity(1)))
	require.NoError(t, r.On("x", sibling))

	require.NoError(t, r.Emit("x"))

	assert.Len(t, self.calls, 1)
	assert.Len(t, sibling.calls, 1)
	assert.Equal(t, 1, r.Count())
	assert.EqualValues(t, 0, r.Stats().SubscriptionsExpired)
}

func TestEmit_HandlerAddedDuringEmissionRunsNextTime(t *testing.T) {
	r, _ := newTestRegistry(t)
	added := &recorder{}
	adder := &recorder{fn: func(Invocation) {
		require.NoError(t, r.On("x", added))
		require.NoError(t, r.On("x.*", added))
	}}

	require.NoError(t, r.On("x", adder))

	require.NoError(t, r.Emit("x"))
	assert.Empty(t, added.calls)

	require.NoError(t, r.Emit("x"))
	assert.Len(t, added.calls, 1)
}

func TestEmit_RecreatedPatternNotInvokedInSameEmission(t *testing.T) {
	r, _ := newTestRegistry(t)
	victim := &recorder{}
	recreator := &recorder{}
	recreator.fn = func(Invocation) {
		require.NoError(t, r.Off("x"))
		require.NoError(t, r.On("x", victim))
	}

	require.NoError(t, r.On("x", recreator))
	require.NoError(t, r.On("x", victim))

	require.NoError(t, r.Emit("x"))
	assert.Empty(t, victim.calls)
	assert.Equal(t, 1, r.CountByPattern("x"))
}

func TestEmit_ReentrantEmit(t *testing.T) {
	r, _ := newTestRegistry(t)
	var trace []string

	inner := &recorder{name: "inner", trace: &trace}
	outer := &recorder{name: "outer", trace: &trace}
	outer.fn = func(Invocation) {
		require.NoError(t, r.Emit("inner"))
	}
	tail := &recorder{name: "tail", trace: &trace}

	require.NoError(t, r.On("outer", outer))
	require.NoError(t, r.On("outer", tail))
	require.NoError(t, r.Once("inner", inner))

	require.NoError(t, r.Emit("outer"))
	require.NoError(t, r.Emit("outer"))

	assert.Equal(t, []string{"outer", "inner", "tail", "outer", "tail"}, trace)
}

func TestEmit_ReentrantErrorPropagates(t *testing.T) {
	r, _ := newTestRegistry(t)
	errInner := errors.New("inner failed")

	outer := &recorder{}
	outer.fn = func(Invocation) {
		outer.err = r.Emit("inner")
	}

	require.NoError(t, r.On("outer", outer))
	require.NoError(t, r.On("inner", &recorder{err: errInner}))

	err := r.Emit("outer")
	assert.ErrorIs(t, err, errInner)

	var he *HandlerError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "outer", he.Event)
}
