package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/dungeon/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running room scripts. It implements
// world.Behavior, so it can be attached to every generated room.
// Single-goroutine access only (game loop).
//
// Hooks are optional globals:
//
//	on_room_enter(room)
//	on_room_exit(room)
//	on_room_cull(room, culled)
//	on_dungeon_generated(info)
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir,
// core/ first, then rooms/.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	for _, sub := range []string{"core", "rooms"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("log_info", vm.NewFunction(e.luaLog))
	return e
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("script", zap.String("msg", L.CheckString(1)))
	return 0
}

func (e *Engine) roomTable(r *world.Room) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("name", lua.LString(r.Name))
	t.RawSetString("archetype", lua.LString(r.Archetype))
	t.RawSetString("index", lua.LNumber(r.Index()))
	t.RawSetString("branch", lua.LBool(r.Branch))
	t.RawSetString("id", lua.LNumber(r.ID))
	return t
}

// call runs an optional hook. A missing hook is not an error.
func (e *Engine) call(name string, args ...lua.LValue) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
	}
}

func (e *Engine) OnPlayerEnter(r *world.Room) {
	e.call("on_room_enter", e.roomTable(r))
}

func (e *Engine) OnPlayerExit(r *world.Room) {
	e.call("on_room_exit", e.roomTable(r))
}

func (e *Engine) OnCullChanged(r *world.Room, culled bool) {
	e.call("on_room_cull", e.roomTable(r), lua.LBool(culled))
}

// GenerationInfo is passed to on_dungeon_generated.
type GenerationInfo struct {
	Flow  string
	Seed  int64
	Rooms int
}

func (e *Engine) OnDungeonGenerated(info GenerationInfo) {
	t := e.vm.NewTable()
	t.RawSetString("flow", lua.LString(info.Flow))
	t.RawSetString("seed", lua.LNumber(info.Seed))
	t.RawSetString("rooms", lua.LNumber(info.Rooms))
	e.call("on_dungeon_generated", t)
}
