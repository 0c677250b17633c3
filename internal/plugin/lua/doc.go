// Package lua exposes an event.Registry to Lua scripts.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management
//   - Go-Lua type conversion bridge
//   - The relay module, bound to a Registry
//
// # State
//
// The State type manages a Lua runtime with sandboxing:
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(5 * time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	mod := lua.NewModule(reg)
//	if err := state.Load(mod); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := state.DoFile(ctx, "script.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Module
//
// The relay module is installed as a global and can also be required:
//
//	local relay = require("relay")
//
//	local function on_order(id, total)
//	    print("order", id, total)
//	end
//
//	relay.on("order.*", on_order)       -- unbounded
//	relay.on("order.*", on_order, 3)    -- refreshes capacity to 3
//	relay.once("app.ready", function() print("ready") end)
//	relay.emit("order.created", "ord-1", 42)
//	relay.off("order.*", on_order)
//
// emit_with passes a bound value as the handler's first argument:
//
//	local cart = { id = "c-1" }
//	relay.on("cart.updated", function(self, sku) print(self.id, sku) end)
//	relay.emit_with("cart.updated", cart, "sku-1")
//
// A Lua function keeps one identity for the lifetime of the module, so
// registering the same function twice for a pattern refreshes its capacity.
// Errors raised by a handler abort the emission and are raised again from
// relay.emit.
//
// # Sandbox
//
// The Sandbox restricts Lua code execution by:
//   - Removing functions that load code (dofile, loadfile, load)
//   - Opening only the base, table, string and math libraries
//   - Limiting require to those libraries and registered modules
//
// # Bridge
//
// The Bridge provides bidirectional type conversion:
//
//	bridge := lua.NewBridge(state.LuaState())
//
//	// Go to Lua
//	luaVal := bridge.ToLuaValue(map[string]any{
//	    "name": "test",
//	    "count": 42,
//	})
//
//	// Lua to Go
//	goVal := bridge.ToGoValue(luaVal)
package lua
