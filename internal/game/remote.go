package game

import (
	"math"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

// RemotePlayerInfo is the identity plus last-known state of another
// room member, as reported by the server.
type RemotePlayerInfo struct {
	ID       string
	Name     string
	ShipType string
	Color    string
	Position vec.V3
	Rotation vec.V3
	Health   float64
	Alive    bool
}

// UpsertRemotePlayer registers or refreshes a remote player entity.
// No local physics run on it; its transform is snapshot-applied.
func (w *World) UpsertRemotePlayer(info RemotePlayerInfo) *Entity {
	if e, ok := w.remotes[info.ID]; ok {
		w.applyRemoteState(e, info)
		return e
	}

	color := info.Color
	if color == "" {
		color = "#ff0088"
	}
	tris := render.RotateX(geom.RemoteShip(info.ShipType, color), math.Pi)
	m := render.NewMesh(tris)
	m.Order = render.OrderXYZ

	e := w.register(&Entity{
		Kind:      KindRemotePlayer,
		Mesh:      m,
		ID:        info.ID,
		Name:      info.Name,
		Color:     color,
		Health:    info.Health,
		MaxHealth: 100,
	})
	w.applyRemoteState(e, info)
	w.remotes[info.ID] = e
	return e
}

// ApplyRemoteState snapshot-applies a network update onto a remote
// player. Unknown ids are ignored; the update may race a leave.
func (w *World) ApplyRemoteState(id string, position, rotation vec.V3, health float64, alive bool) {
	e, ok := w.remotes[id]
	if !ok {
		return
	}
	w.applyRemoteState(e, RemotePlayerInfo{
		Position: position,
		Rotation: rotation,
		Health:   health,
		Alive:    alive,
	})
}

func (w *World) applyRemoteState(e *Entity, info RemotePlayerInfo) {
	e.Mesh.Position = info.Position
	e.Mesh.Rotation = info.Rotation
	e.Health = info.Health
	e.Downed = !info.Alive
	if e.Downed {
		e.Mesh.Alpha = 0
	} else {
		e.Mesh.Alpha = 1
	}
}

// ApplyRemoteHealth overwrites a remote player's health with the
// server's authoritative figure.
func (w *World) ApplyRemoteHealth(id string, health float64) {
	if e, ok := w.remotes[id]; ok {
		e.Health = health
	}
}

// MarkRemoteDowned hides a remote player killed by someone else until
// the respawn event arrives.
func (w *World) MarkRemoteDowned(id string) {
	if e, ok := w.remotes[id]; ok {
		e.Downed = true
		e.Mesh.Alpha = 0
	}
}

// RespawnRemote restores a downed remote player at a new position.
func (w *World) RespawnRemote(id string, position vec.V3, health float64) {
	if e, ok := w.remotes[id]; ok {
		e.Downed = false
		e.Mesh.Alpha = 1
		e.Mesh.Position = position
		e.Health = health
	}
}

// RemoveRemotePlayer destroys a remote player entity after a leave or
// disconnect.
func (w *World) RemoveRemotePlayer(id string) {
	if e, ok := w.remotes[id]; ok {
		w.destroy(e)
		delete(w.remotes, id)
	}
}

// RemotePlayerCount reports how many remote players are registered.
func (w *World) RemotePlayerCount() int { return len(w.remotes) }

// SpawnRemoteShot materializes a peer's bullet locally. It flies and
// expires like a local one but never claims remote hits; only the
// shooter's own client reports those.
func (w *World) SpawnRemoteShot(ownerID string, position, direction vec.V3, color string) *Entity {
	weapon := WeaponTable["laser"]
	b := w.newBullet(direction.Normalize(), weapon, color)
	b.ID = ownerID
	b.Mesh.Position = position
	b.Mesh.Rotation.Z = math.Atan2(direction.Y, direction.X)
	return b
}
