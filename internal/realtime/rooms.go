package realtime

// Room names are a fixed, convention-based vocabulary shared with the
// frontend; they are not dynamically configured.
const (
	RoomGlobal     = "global"
	RoomAdmin      = "admin"
	RoomStore      = "store"
	RoomWallet     = "wallet"
	RoomPinPanClub = "pinpanclub"
)

var roomCatalog = []string{RoomGlobal, RoomAdmin, RoomStore, RoomWallet, RoomPinPanClub}

// Rooms returns the fixed room catalog.
func Rooms() []string {
	out := make([]string, len(roomCatalog))
	copy(out, roomCatalog)
	return out
}

// KnownRoom reports whether clients may join room by name.
func KnownRoom(room string) bool {
	for _, r := range roomCatalog {
		if r == room {
			return true
		}
	}
	return false
}
