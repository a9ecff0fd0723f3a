package mysql

const roomColumns = "id, name, description, image_url, capacity, price, amenities, status, created_at"

const listRoomsSQL = "SELECT " + roomColumns + " FROM rooms ORDER BY id ASC"

const listRoomsByStatusSQL = "SELECT " + roomColumns + " FROM rooms WHERE status = ? ORDER BY id ASC"

const getRoomSQL = "SELECT " + roomColumns + " FROM rooms WHERE id = ?"

const upsertRoomSQL = `
INSERT INTO rooms
  (id, name, description, image_url, capacity, price, amenities, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  description = VALUES(description),
  image_url   = VALUES(image_url),
  capacity    = VALUES(capacity),
  price       = VALUES(price),
  amenities   = VALUES(amenities),
  status      = VALUES(status),
  updated_at  = CURRENT_TIMESTAMP
`

const updateRoomStatusSQL = "UPDATE rooms SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"

const deleteAllRoomsSQL = "DELETE FROM rooms"

// -----------------------------------------------------------------------------
// LEDGER
// -----------------------------------------------------------------------------

const bookingColumns = "id, room_id, check_in, check_out, guest_name, guest_count"

const listBookingsSQL = "SELECT " + bookingColumns + " FROM bookings ORDER BY room_id, check_in, id"

const listBookingsForRoomSQL = "SELECT " + bookingColumns + " FROM bookings WHERE room_id = ? ORDER BY check_in, id"

// Serializes concurrent bookings of the same room for the rest of the transaction.
const lockRoomSQL = "SELECT id FROM rooms WHERE id = ? FOR UPDATE"

// Both bounds inclusive: a stay beginning on an existing check-out day conflicts.
const countConflictsSQL = "SELECT COUNT(*) FROM bookings WHERE room_id = ? AND check_in <= ? AND check_out >= ?"

const insertBookingSQL = `
INSERT INTO bookings (room_id, check_in, check_out, guest_name, guest_count)
VALUES (?, ?, ?, ?, ?)
`

const deleteAllBookingsSQL = "DELETE FROM bookings"
