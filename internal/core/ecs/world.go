package ecs

// World owns the entity pool for one dungeon service and a deferred
// destruction queue. Rooms of a replaced dungeon are queued on regeneration
// and released by the cleanup system at the end of the frame, so nothing
// observing the old rooms during the same frame sees a recycled ID.
type World struct {
	pool         *EntityPool
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of entities waiting for the next flush.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}
