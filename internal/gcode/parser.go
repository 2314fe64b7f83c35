package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
	MoveArcCW                   // G2: clockwise arc about From + (I, J)
	MoveArcCCW                  // G3: counter-clockwise arc about From + (I, J)
)

func (t MoveType) String() string {
	switch t {
	case MoveFeed:
		return "Feed"
	case MovePlunge:
		return "Plunge"
	case MoveRetract:
		return "Retract"
	case MoveArcCW:
		return "ArcCW"
	case MoveArcCCW:
		return "ArcCCW"
	default:
		return "Rapid"
	}
}

// GCodeMove represents a single parsed movement from GCode.
type GCodeMove struct {
	Type     MoveType
	Line     int // 1-based source line
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	I        float64 // Arc center offset, arcs only
	J        float64
	FeedRate float64
}

var (
	wordRe  = regexp.MustCompile(`G(\d+)`)
	coordRe = regexp.MustCompile(`([XYZFIJ])\s*(-?\d*\.?\d+)`)
)

// ParseGCode parses a GCode string into a slice of structured moves.
// It tracks absolute position state and classifies each G0 to G3 command
// by its movement characteristics. Motion is modal: a line carrying only
// coordinates repeats the last motion word.
func ParseGCode(code string) []GCodeMove {
	var moves []GCodeMove

	// Current machine state
	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	mode := -1

	for n, line := range strings.Split(code, "\n") {
		// Strip inline comments (semicolon or parenthetical)
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		for {
			idx := strings.Index(line, "(")
			end := strings.Index(line, ")")
			if idx < 0 || end < idx {
				break
			}
			line = line[:idx] + line[end+1:]
		}
		upper := strings.ToUpper(strings.TrimSpace(line))
		if upper == "" {
			continue
		}

		for _, w := range wordRe.FindAllStringSubmatch(upper, -1) {
			if g, err := strconv.Atoi(w[1]); err == nil && g <= 3 {
				mode = g
			}
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		var i, j float64
		moved := false
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX, moved = val, true
			case "Y":
				newY, moved = val, true
			case "Z":
				newZ, moved = val, true
			case "I":
				i = val
			case "J":
				j = val
			case "F":
				newFeed = val
			}
		}
		curFeed = newFeed
		if !moved || mode < 0 {
			continue
		}

		var moveType MoveType
		switch mode {
		case 2:
			moveType = MoveArcCW
		case 3:
			moveType = MoveArcCCW
		default:
			moveType = classifyMove(mode == 0, curZ, newZ, curX, curY, newX, newY)
		}

		moves = append(moves, GCodeMove{
			Type:     moveType,
			Line:     n + 1,
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			I:        i,
			J:        j,
			FeedRate: newFeed,
		})

		curX, curY, curZ = newX, newY, newZ
	}

	return moves
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		// Z going down (more negative) without XY movement = plunge
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}
