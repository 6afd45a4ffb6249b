package app

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned by ParseKey for names with no Key
var ErrUnknownKey = errors.New("unknown key")

// Key is an input key the application reacts to
type Key int

// Keys
const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyW
	KeyS
	KeyA
	KeyD
	KeySpace
	KeyControl
	KeyF2
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyEscape
	KeyY
	KeyN
)

var keyNames = map[Key]string{
	KeyLeft:    "Left",
	KeyRight:   "Right",
	KeyUp:      "Up",
	KeyDown:    "Down",
	KeyW:       "W",
	KeyS:       "S",
	KeyA:       "A",
	KeyD:       "D",
	KeySpace:   "Space",
	KeyControl: "Control",
	KeyF2:      "F2",
	Key1:       "1",
	Key2:       "2",
	Key3:       "3",
	Key4:       "4",
	Key5:       "5",
	Key6:       "6",
	Key7:       "7",
	Key8:       "8",
	Key9:       "9",
	KeyEscape:  "Escape",
	KeyY:       "Y",
	KeyN:       "N",
}

// String returns the key name accepted by ParseKey
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKey looks a key up by name, ignoring case
func ParseKey(name string) (Key, error) {
	for k, n := range keyNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return KeyUnknown, fmt.Errorf("%q: %w", name, ErrUnknownKey)
}

// digit returns the 0-based option index of keys 1-9
func (k Key) digit() (int, bool) {
	if k >= Key1 && k <= Key9 {
		return int(k - Key1), true
	}
	return 0, false
}
