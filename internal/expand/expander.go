// Package expand hosts user Lua scripts that rewrite abbreviations into
// longer text when a word commits. Scripts call
//
//	expand.register("brb", "be right back")
//	expand.register("sig", function(word) return "Regards,\nAlex" end)
//
// and the keyboard manager consults Expand on each finished word. A broken
// script surfaces as an error for a user notice; it never blocks typing.
package expand

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("expand: expander closed")

// Expander owns one sandboxed Lua state. gopher-lua's LState is not
// goroutine-safe, so every entry point serializes on the mutex.
type Expander struct {
	mu      sync.Mutex
	state   *lua.LState
	entries map[string]lua.LValue
	closed  bool
}

// NewExpander creates an expander with only the safe Lua libraries opened
// (no io, os, debug, or package) and the expand module registered.
func NewExpander() *Expander {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	e := &Expander{
		state:   L,
		entries: make(map[string]lua.LValue),
	}

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"register": e.luaRegister,
	})
	L.SetGlobal("expand", mod)
	return e
}

// luaRegister implements expand.register(abbrev, string|function). Runs
// inside a Load call, which already holds the mutex.
func (e *Expander) luaRegister(L *lua.LState) int {
	abbrev := strings.ToLower(L.CheckString(1))
	value := L.CheckAny(2)
	switch value.Type() {
	case lua.LTString, lua.LTFunction:
		e.entries[abbrev] = value
	default:
		L.ArgError(2, "expected string or function")
	}
	return 0
}

// LoadScript executes a script so its register calls take effect.
func (e *Expander) LoadScript(code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.doWithRecovery(func() error {
		return e.state.DoString(code)
	})
}

// LoadFile executes a script file.
func (e *Expander) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.doWithRecovery(func() error {
		return e.state.DoFile(path)
	})
}

// Expand returns the replacement for word, if an expansion is registered.
// Abbreviation matching ignores case; function expansions receive the word
// as typed.
func (e *Expander) Expand(word string) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", false, ErrClosed
	}
	value, ok := e.entries[strings.ToLower(word)]
	if !ok {
		return "", false, nil
	}

	switch v := value.(type) {
	case lua.LString:
		return string(v), true, nil
	case *lua.LFunction:
		var ret lua.LValue
		err := e.doWithRecovery(func() error {
			e.state.Push(v)
			e.state.Push(lua.LString(word))
			if err := e.state.PCall(1, 1, nil); err != nil {
				return err
			}
			ret = e.state.Get(-1)
			e.state.Pop(1)
			return nil
		})
		if err != nil {
			return "", false, fmt.Errorf("expand %q: %w", word, err)
		}
		switch r := ret.(type) {
		case lua.LString:
			return string(r), true, nil
		case *lua.LNilType, lua.LBool:
			return "", false, nil
		default:
			return "", false, fmt.Errorf("expand %q: script returned %s, want string", word, ret.Type())
		}
	}
	return "", false, nil
}

// Len reports how many abbreviations are registered.
func (e *Expander) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Close releases the Lua state.
func (e *Expander) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.state.Close()
	e.closed = true
	return nil
}

func (e *Expander) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
