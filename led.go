package ledkit

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LedId names one of the fixed indicator LEDs on the board.
type LedId uint8

const (
	LedUser1 LedId = iota
	LedUser2
	LedUser3

	LedGreen1
	LedGreen2

	LedRed1
	LedRed2

	LedOrange1
	LedOrange2

	LedBlue1
	LedBlue2

	LedWhite1
	LedWhite2
	LedWhite3

	ledCount
)

var ledNames = [ledCount]string{
	LedUser1:   "User1",
	LedUser2:   "User2",
	LedUser3:   "User3",
	LedGreen1:  "Green1",
	LedGreen2:  "Green2",
	LedRed1:    "Red1",
	LedRed2:    "Red2",
	LedOrange1: "Orange1",
	LedOrange2: "Orange2",
	LedBlue1:   "Blue1",
	LedBlue2:   "Blue2",
	LedWhite1:  "White1",
	LedWhite2:  "White2",
	LedWhite3:  "White3",
}

// AllLeds returns every LedId in declaration order.
func AllLeds() []LedId {
	ids := make([]LedId, 0, ledCount)
	for id := LedId(0); id < ledCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

func (id LedId) Valid() bool {
	return id < ledCount
}

func (id LedId) String() string {
	if !id.Valid() {
		return "Led(" + strconv.Itoa(int(id)) + ")"
	}
	return ledNames[id]
}

// ParseLedId accepts names like "Green1", "green1" or "LedGreen1".
func ParseLedId(name string) (LedId, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > 3 && strings.EqualFold(trimmed[:3], "led") {
		trimmed = trimmed[3:]
	}
	for id, ledName := range ledNames {
		if strings.EqualFold(ledName, trimmed) {
			return LedId(id), nil
		}
	}
	return 0, errors.Errorf("unknown led name: %q", name)
}
