package geo

import (
	"errors"
	"fmt"
)

// Tile is a single base-4 digit of a quadkey, or the terminal wildcard.
type Tile uint8

const (
	TopLeft Tile = iota
	TopRight
	BottomLeft
	BottomRight
	Wildcard
)

const wildcardChar = '#'

var (
	ErrEmptyString  = errors.New("empty quadkey string")
	ErrEmptyTileStr = errors.New("empty tile in quadkey")
)

type InvalidTileCharError struct {
	Char rune
}

func (e InvalidTileCharError) Error() string {
	return fmt.Sprintf("invalid tile character %q", e.Char)
}

func ParseTile(c rune) (Tile, error) {
	switch c {
	case '0':
		return TopLeft, nil
	case '1':
		return TopRight, nil
	case '2':
		return BottomLeft, nil
	case '3':
		return BottomRight, nil
	case wildcardChar:
		return Wildcard, nil
	default:
		return 0, InvalidTileCharError{Char: c}
	}
}

func (t Tile) Rune() rune {
	if t == Wildcard {
		return wildcardChar
	}
	return rune('0' + t)
}

func (t Tile) String() string {
	return string(t.Rune())
}
