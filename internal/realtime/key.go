package realtime

import "strconv"

// RoomKey выводит идентификатор комнаты из неупорядоченной пары
// идентификаторов участников. Ключ симметричен (RoomKey(a,b) == RoomKey(b,a))
// и инъективен на множестве положительных id: разделитель исключает
// коллизии между разными парами. Пара a == a дает собственную комнату
// ("сохраненные сообщения"), отличную от любой двухсторонней.
func RoomKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + ":" + strconv.FormatInt(b, 10)
}
