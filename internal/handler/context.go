package handler

import (
	"context"

	"github.com/l1jgo/dungeon/internal/dungeon"
	"github.com/l1jgo/dungeon/internal/net"
	"github.com/l1jgo/dungeon/internal/net/packet"
	"github.com/l1jgo/dungeon/internal/system"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Ctx       context.Context // root context for regeneration
	Dungeon   *dungeon.Dungeon
	Autopilot *system.AutopilotSystem
	Sessions  *net.SessionStore
	Log       *zap.Logger
}

var (
	anyState       = []packet.SessionState{packet.StateObserver, packet.StateController}
	controllerOnly = []packet.SessionState{packet.StateController}
)

// RegisterAll registers all message handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(net.MsgClaim, anyState,
		func(sess any, r *packet.Reader) {
			HandleClaim(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(net.MsgPosition, controllerOnly,
		func(sess any, r *packet.Reader) {
			HandlePosition(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(net.MsgCulling, controllerOnly,
		func(sess any, r *packet.Reader) {
			HandleCulling(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(net.MsgRegenerate, controllerOnly,
		func(sess any, r *packet.Reader) {
			HandleRegenerate(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(net.MsgAutopilot, controllerOnly,
		func(sess any, r *packet.Reader) {
			HandleAutopilot(sess.(*net.Session), r, deps)
		},
	)
}

func sendError(sess *net.Session, msg string) {
	sess.SendData(net.MsgError, net.ErrorData{Message: msg})
}
