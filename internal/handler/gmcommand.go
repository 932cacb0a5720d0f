package handler

import (
	"github.com/l1jgo/dungeon/internal/net"
	"github.com/l1jgo/dungeon/internal/net/packet"
	"go.uber.org/zap"
)

// HandleCulling sets or toggles room culling.
func HandleCulling(sess *net.Session, r *packet.Reader, deps *Deps) {
	var c net.CullingData
	if err := r.Decode(&c); err != nil {
		sendError(sess, err.Error())
		return
	}
	if c.Enabled == nil {
		deps.Dungeon.ToggleCulling()
		return
	}
	deps.Dungeon.SetCulling(*c.Enabled)
}

// HandleRegenerate replaces the dungeon. Seed 0 replays the current seed,
// a negative seed picks a fresh one.
func HandleRegenerate(sess *net.Session, r *packet.Reader, deps *Deps) {
	var g net.RegenerateData
	if err := r.Decode(&g); err != nil {
		sendError(sess, err.Error())
		return
	}
	switch {
	case g.Seed < 0:
		deps.Dungeon.SetSeed(0)
	case g.Seed > 0:
		deps.Dungeon.SetSeed(g.Seed)
	}
	deps.Log.Info("regenerate requested",
		zap.Uint64("session", sess.ID),
		zap.Int64("seed", g.Seed),
	)
	deps.Dungeon.Generate(deps.Ctx)
	if !deps.Dungeon.Initialized() {
		sendError(sess, "generation failed")
	}
}

// HandleAutopilot starts or stops the autopilot walk.
func HandleAutopilot(sess *net.Session, r *packet.Reader, deps *Deps) {
	if deps.Autopilot == nil {
		sendError(sess, "autopilot unavailable")
		return
	}
	var a net.AutopilotData
	if err := r.Decode(&a); err != nil {
		sendError(sess, err.Error())
		return
	}
	if a.Enabled {
		deps.Autopilot.Enable()
	} else {
		deps.Autopilot.Disable()
	}
}
