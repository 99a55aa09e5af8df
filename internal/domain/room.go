package domain

import "time"

// Room summarizes a live chat room.
type Room struct {
	Name        string `json:"name"`
	Messages    int    `json:"messages"`
	Connections int    `json:"connections"`
}

// RoomStats holds lifetime activity counters for a room.
type RoomStats struct {
	Name        string    `json:"name"`
	Messages    int64     `json:"messages"`
	Connections int64     `json:"connections"`
	LastActive  time.Time `json:"last_active"`
}
