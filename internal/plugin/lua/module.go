package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/relay/internal/event"
)

// ModuleName is the global and require name of the relay module.
const ModuleName = "relay"

// Module implements the relay Lua module on top of an event.Registry.
type Module struct {
	reg    *event.Registry
	L      *lua.LState
	bridge *Bridge
	mod    *lua.LTable

	// handlers gives each Lua function one stable Go identity.
	handlers map[*lua.LFunction]*luaHandler
}

// NewModule creates a relay module bound to reg.
func NewModule(reg *event.Registry) *Module {
	return &Module{
		reg:      reg,
		handlers: make(map[*lua.LFunction]*luaHandler),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return ModuleName
}

// Register registers the module into the Lua state as a global and as a
// preloaded module.
func (m *Module) Register(L *lua.LState) error {
	if m.reg == nil {
		return ErrNilRegistry
	}

	m.L = L
	m.bridge = NewBridge(L)

	mod := L.NewTable()
	L.SetField(mod, "on", L.NewFunction(m.on))
	L.SetField(mod, "once", L.NewFunction(m.once))
	L.SetField(mod, "off", L.NewFunction(m.off))
	L.SetField(mod, "emit", L.NewFunction(m.emit))
	L.SetField(mod, "emit_with", L.NewFunction(m.emitWith))
	L.SetField(mod, "start_logging", L.NewFunction(m.startLogging))
	L.SetField(mod, "stop_logging", L.NewFunction(m.stopLogging))
	L.SetField(mod, "logging_enabled", L.NewFunction(m.loggingEnabled))
	L.SetField(mod, "dump", L.NewFunction(m.dump))
	L.SetField(mod, "has", L.NewFunction(m.has))
	L.SetField(mod, "count", L.NewFunction(m.count))
	L.SetField(mod, "patterns", L.NewFunction(m.patterns))
	m.mod = mod

	L.SetGlobal(ModuleName, mod)
	if _, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.PreloadModule(ModuleName, func(L *lua.LState) int {
			L.Push(m.mod)
			return 1
		})
	}
	return nil
}

// Handler returns the registry handler for fn, creating it on first use.
func (m *Module) Handler(fn *lua.LFunction) event.Handler {
	if h, ok := m.handlers[fn]; ok {
		return h
	}
	h := &luaHandler{module: m, fn: fn}
	m.handlers[fn] = h
	return h
}

// luaHandler invokes a Lua function for each emission.
type luaHandler struct {
	module *Module
	fn     *lua.LFunction
}

// Handle calls the function with the bound value followed by the emitted
// arguments. A bound nil is passed as nil so parameters keep their
// positions. An error raised by the function is returned.
func (h *luaHandler) Handle(inv event.Invocation) error {
	if h.module.bridge == nil {
		return ErrNotRegistered
	}

	args := make([]any, 0, len(inv.Args)+1)
	if inv.Bound {
		args = append(args, inv.Context)
	}
	args = append(args, inv.Args...)

	_, err := h.module.bridge.CallFunc(h.fn, args...)
	return err
}

// Release forgets the function once it has no subscription left.
func (h *luaHandler) Release() {
	if cur, ok := h.module.handlers[h.fn]; ok && cur == h {
		delete(h.module.handlers, h.fn)
	}
}

// on(pattern, fn [, capacity])
// Registers fn for pattern. Registering the same fn again refreshes its
// capacity.
func (m *Module) on(L *lua.LState) int {
	pattern := L.CheckString(1)
	fn := L.CheckFunction(2)

	var opts []event.SubscriptionOption
	if L.GetTop() >= 3 && L.Get(3) != lua.LNil {
		opts = append(opts, event.WithCapacity(L.CheckInt(3)))
	}

	if err := m.reg.On(pattern, m.Handler(fn), opts...); err != nil {
		L.RaiseError("on: %s", err.Error())
	}
	return 0
}

// once(pattern, fn)
// Registers fn for a single invocation.
func (m *Module) once(L *lua.LState) int {
	pattern := L.CheckString(1)
	fn := L.CheckFunction(2)

	if err := m.reg.Once(pattern, m.Handler(fn)); err != nil {
		L.RaiseError("once: %s", err.Error())
	}
	return 0
}

// off(pattern [, fn])
// Removes fn from pattern, or the whole pattern when fn is omitted.
func (m *Module) off(L *lua.LState) int {
	pattern := L.CheckString(1)

	var handlers []event.Handler
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		fn := L.CheckFunction(2)
		h, ok := m.handlers[fn]
		if !ok {
			// Never registered; the registry logs it as unknown.
			h = &luaHandler{module: m, fn: fn}
		}
		handlers = append(handlers, h)
	}

	if err := m.reg.Off(pattern, handlers...); err != nil {
		L.RaiseError("off: %s", err.Error())
	}
	return 0
}

// emit(name, ...)
// Invokes every handler matching name with the remaining arguments.
func (m *Module) emit(L *lua.LState) int {
	name := L.CheckString(1)

	if err := m.reg.Emit(name, collectArgs(L, 2)...); err != nil {
		L.RaiseError("emit: %s", err.Error())
	}
	return 0
}

// emit_with(name, self, ...)
// Like emit, but every handler receives self as its first argument.
func (m *Module) emitWith(L *lua.LState) int {
	name := L.CheckString(1)
	self := L.Get(2)

	if err := m.reg.EmitWithContext(name, self, collectArgs(L, 3)...); err != nil {
		L.RaiseError("emit_with: %s", err.Error())
	}
	return 0
}

// start_logging()
func (m *Module) startLogging(L *lua.LState) int {
	m.reg.StartLogging()
	return 0
}

// stop_logging()
func (m *Module) stopLogging(L *lua.LState) int {
	m.reg.StopLogging()
	return 0
}

// logging_enabled() -> bool
func (m *Module) loggingEnabled(L *lua.LState) int {
	L.Push(lua.LBool(m.reg.LoggingEnabled()))
	return 1
}

// dump([forced])
// Writes the registration table to the log.
func (m *Module) dump(L *lua.LState) int {
	m.reg.DumpState(L.OptBool(1, false))
	return 0
}

// has(pattern) -> bool
func (m *Module) has(L *lua.LState) int {
	L.Push(lua.LBool(m.reg.Has(L.CheckString(1))))
	return 1
}

// count([pattern]) -> number
// Returns the subscriptions for pattern, or in total.
func (m *Module) count(L *lua.LState) int {
	if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
		L.Push(lua.LNumber(m.reg.CountByPattern(L.CheckString(1))))
		return 1
	}
	L.Push(lua.LNumber(m.reg.Count()))
	return 1
}

// patterns() -> table
// Returns the registered patterns in registration order.
func (m *Module) patterns(L *lua.LState) int {
	L.Push(m.bridge.ToLuaValue(m.reg.Patterns()))
	return 1
}

// collectArgs returns the Lua values from index from to the top of the
// stack, unconverted.
func collectArgs(L *lua.LState, from int) []any {
	top := L.GetTop()
	if top < from {
		return nil
	}

	args := make([]any, 0, top-from+1)
	for i := from; i <= top; i++ {
		args = append(args, L.Get(i))
	}
	return args
}
