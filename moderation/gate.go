// knockout-arena/moderation/gate.go
package moderation

import (
	"errors"
	"time"
)

// ErrPrivilegedIdentity возвращается при попытке замьютить администратора.
var ErrPrivilegedIdentity = errors.New("the privileged identity cannot be muted")

// Gate решает, принимать ли сообщение чата: запись с истёкшим сроком
// удаляется лениво при очередной проверке, фонового свипа нет.
type Gate struct {
	admin string
	now   func() time.Time
	mutes map[string]time.Time
}

func NewGate(admin string) *Gate {
	return &Gate{
		admin: admin,
		now:   time.Now,
		mutes: make(map[string]time.Time),
	}
}

// WithClock подменяет источник времени. Нужен тестам.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// IsMuted reports whether the identity is currently muted. Expired records
// are purged as a side effect of the check.
func (g *Gate) IsMuted(identity string) bool {
	expiry, ok := g.mutes[identity]
	if !ok {
		return false
	}
	if !expiry.After(g.now()) {
		delete(g.mutes, identity)
		return false
	}
	return true
}

// Mute ставит или перезаписывает срок мьюта. Администратора замьютить нельзя.
func (g *Gate) Mute(identity string, duration time.Duration) error {
	if identity == g.admin {
		return ErrPrivilegedIdentity
	}
	g.mutes[identity] = g.now().Add(duration)
	return nil
}

// Unmute removes the record regardless of expiry.
func (g *Gate) Unmute(identity string) {
	delete(g.mutes, identity)
}

// Table returns a copy of the mute table for broadcasts and snapshots.
func (g *Gate) Table() map[string]time.Time {
	out := make(map[string]time.Time, len(g.mutes))
	for identity, expiry := range g.mutes {
		out[identity] = expiry
	}
	return out
}

// Restore replaces the table with one loaded from a persisted snapshot.
func (g *Gate) Restore(table map[string]time.Time) {
	g.mutes = make(map[string]time.Time, len(table))
	for identity, expiry := range table {
		g.mutes[identity] = expiry
	}
}
