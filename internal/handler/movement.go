package handler

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/dungeon/internal/net"
	"github.com/l1jgo/dungeon/internal/net/packet"
	"go.uber.org/zap"
)

// HandleClaim makes the session the controller of the tracked player.
// Only one live controller exists at a time.
func HandleClaim(sess *net.Session, _ *packet.Reader, deps *Deps) {
	if !deps.Sessions.Claim(sess.ID) {
		sendError(sess, "player already controlled")
		return
	}
	sess.SetState(packet.StateController)
	deps.Log.Info("player claimed", zap.Uint64("session", sess.ID))
	sess.SendData(net.MsgWelcome, net.WelcomeData{Session: sess.ID, Controller: true})
}

// HandlePosition moves the tracked player. Manual movement stops the
// autopilot. The room change, if any, is picked up by the tracker later
// in the same frame.
func HandlePosition(sess *net.Session, r *packet.Reader, deps *Deps) {
	var p net.PositionData
	if err := r.Decode(&p); err != nil {
		sendError(sess, err.Error())
		return
	}
	if deps.Autopilot != nil && deps.Autopilot.Enabled() {
		deps.Autopilot.Disable()
	}
	deps.Dungeon.Agent().SetPosition(mgl64.Vec3{p.X, p.Y, p.Z})
}
