package realtime

import (
	"sort"
	"sync"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
)

const DefaultQueueSize = 32

// Registry admits, indexes, and fans out to live connections. Each
// connection gets a stable integer handle; room and user indices store
// handle sets rather than pointers, so removal is O(1) per index and no
// dangling references survive a disconnect. The mutex is held only
// across in-memory index updates, never across a send.
type Registry struct {
	log       *logger.Logger
	queueSize int

	mu         sync.RWMutex
	nextHandle int64
	conns      map[int64]*Conn
	byID       map[string]int64
	rooms      map[string]map[int64]struct{}
	users      map[string]map[int64]struct{}
	connRooms  map[int64]map[string]struct{}
}

func NewRegistry(log *logger.Logger, queueSize int) *Registry {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Registry{
		log:       log.With("component", "ConnectionRegistry"),
		queueSize: queueSize,
		conns:     make(map[int64]*Conn),
		byID:      make(map[string]int64),
		rooms:     make(map[string]map[int64]struct{}),
		users:     make(map[string]map[int64]struct{}),
		connRooms: make(map[int64]map[string]struct{}),
	}
}

// NewConn creates a connection sized for this registry's outbound
// queues. It is not live until Register is called.
func (r *Registry) NewConn(userID string) *Conn {
	return NewConn(userID, r.queueSize)
}

// Register admits conn and auto-joins it to the global room.
func (r *Registry) Register(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextHandle++
	conn.handle = r.nextHandle
	r.conns[conn.handle] = conn
	r.byID[conn.ID] = conn.handle
	r.connRooms[conn.handle] = make(map[string]struct{})
	if conn.UserID != "" {
		set, ok := r.users[conn.UserID]
		if !ok {
			set = make(map[int64]struct{})
			r.users[conn.UserID] = set
		}
		set[conn.handle] = struct{}{}
	}
	r.joinLocked(conn.handle, RoomGlobal)

	r.log.Debug("connection registered", "conn_id", conn.ID, "user_id", conn.UserID)
}

// JoinRoom adds the connection to room; idempotent, no-op for unknown
// connections.
func (r *Registry) JoinRoom(connID, room string) {
	if room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.byID[connID]
	if !ok {
		return
	}
	r.joinLocked(handle, room)
	r.log.Debug("joined room", "conn_id", connID, "room", room)
}

func (r *Registry) joinLocked(handle int64, room string) {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[int64]struct{})
		r.rooms[room] = members
	}
	members[handle] = struct{}{}
	r.connRooms[handle][room] = struct{}{}
}

// LeaveRoom removes the connection from room; idempotent.
func (r *Registry) LeaveRoom(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.byID[connID]
	if !ok {
		return
	}
	r.leaveLocked(handle, room)
	r.log.Debug("left room", "conn_id", connID, "room", room)
}

func (r *Registry) leaveLocked(handle int64, room string) {
	if members, ok := r.rooms[room]; ok {
		delete(members, handle)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	if rooms, ok := r.connRooms[handle]; ok {
		delete(rooms, room)
	}
}

// Unregister removes the connection from every room and the user index
// and signals its transport to shut down. Triggered by disconnect,
// read/write error, or send failure; never retried.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	handle, ok := r.byID[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	conn := r.conns[handle]
	for room := range r.connRooms[handle] {
		if members, mok := r.rooms[room]; mok {
			delete(members, handle)
			if len(members) == 0 {
				delete(r.rooms, room)
			}
		}
	}
	delete(r.connRooms, handle)
	if conn.UserID != "" {
		if set, uok := r.users[conn.UserID]; uok {
			delete(set, handle)
			if len(set) == 0 {
				delete(r.users, conn.UserID)
			}
		}
	}
	delete(r.byID, connID)
	delete(r.conns, handle)
	r.mu.Unlock()

	conn.close()
	r.log.Debug("connection unregistered", "conn_id", connID, "user_id", conn.UserID)
}

// SendToUser delivers msg to every live session of userID. Silent
// no-op when the user has no connection.
func (r *Registry) SendToUser(userID string, msg Message) {
	if userID == "" {
		return
	}
	r.mu.RLock()
	targets := r.snapshotLocked(r.users[userID])
	r.mu.RUnlock()

	for _, conn := range targets {
		r.deliver(conn, msg)
	}
}

// BroadcastToRoom delivers msg to every member of room. Each delivery
// is isolated: one dead or backed-up connection is dropped without
// affecting the rest.
func (r *Registry) BroadcastToRoom(room string, msg Message) {
	r.mu.RLock()
	targets := r.snapshotLocked(r.rooms[room])
	r.mu.RUnlock()

	for _, conn := range targets {
		r.deliver(conn, msg)
	}
}

func (r *Registry) snapshotLocked(handles map[int64]struct{}) []*Conn {
	if len(handles) == 0 {
		return nil
	}
	out := make([]*Conn, 0, len(handles))
	for handle := range handles {
		if conn, ok := r.conns[handle]; ok {
			out = append(out, conn)
		}
	}
	return out
}

// deliver enqueues without blocking. A connection whose queue is full
// (or which is already shutting down) is treated as failed and
// unregistered.
func (r *Registry) deliver(conn *Conn, msg Message) {
	select {
	case <-conn.Done():
	case conn.Outbound <- msg:
		return
	default:
	}
	r.log.Warn("send failed; dropping connection",
		"conn_id", conn.ID, "user_id", conn.UserID, "type", msg.Type)
	r.Unregister(conn.ID)
}

type RoomStats struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

type Stats struct {
	TotalConnections int         `json:"total_connections"`
	TotalRooms       int         `json:"total_rooms"`
	TotalUsers       int         `json:"total_users"`
	Rooms            []RoomStats `json:"rooms"`
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		TotalConnections: len(r.conns),
		TotalRooms:       len(r.rooms),
		TotalUsers:       len(r.users),
		Rooms:            make([]RoomStats, 0, len(r.rooms)),
	}
	for room, members := range r.rooms {
		stats.Rooms = append(stats.Rooms, RoomStats{Name: room, MemberCount: len(members)})
	}
	sort.Slice(stats.Rooms, func(i, j int) bool { return stats.Rooms[i].Name < stats.Rooms[j].Name })
	return stats
}
