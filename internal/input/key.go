// Package input implements the keyboard/mouse escape-sequence decoder
// (spec §4.10, C12): a stateful parser over a byte stream producing Key,
// Mouse, and paste events, dispatched through reverse-iterated
// short-circuiting registries. Grounded on the teacher's stdin polling
// loop shape (cmd/main.go) and, for the registry/dispatch pattern, on
// spec §9's "boxed closures with (ctx, event) -> bool semantics".
package input

// Key identifies one decoded key event (spec §4.10). Kind distinguishes
// a plain letter from a named key (arrows, function keys, ...)
// from a bare Escape; Mod is a bitmask of held modifiers.
type Key struct {
	Kind Kind
	// Letter is set for KindChar: a lowercase 'a'..'z' (the parser folds
	// case into Mod's ModShift bit, matching spec's "lower/upper/ctrl into
	// Key variants").
	Letter rune
	Code   NamedKey
	Mod    Modifier
}

type Kind uint8

const (
	KindEscape Kind = iota
	KindChar
	KindNamed
)

type NamedKey uint8

const (
	NamedUp NamedKey = iota
	NamedDown
	NamedLeft
	NamedRight
	NamedHome
	NamedEnd
	NamedShiftTab
	NamedInsert
	NamedDelete
	NamedPageUp
	NamedPageDown
	NamedF1
	NamedF2
	NamedF3
	NamedF4
	NamedF5
	NamedF6
	NamedF7
	NamedF8
	NamedF9
	NamedF10
	NamedF11
	NamedF12
	namedKeyCount
)

type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

const letterCount = 26 // 'a'..'z'

// baseIndex assigns each Key's "which key, ignoring modifiers" identity
// a distinct small integer: 0 for bare Escape, 1..26 for letters,
// 27..27+namedKeyCount-1 for named keys. This is injective by
// construction (the three Kind ranges are disjoint and each kind's own
// mapping is injective).
func (k Key) baseIndex() uint16 {
	switch k.Kind {
	case KindEscape:
		return 0
	case KindChar:
		return 1 + uint16(k.Letter-'a')
	case KindNamed:
		return 1 + letterCount + uint16(k.Code)
	default:
		return 0
	}
}

// ToUint16 is an injection from every finite Key variant (letters x
// modifier classes x F-keys x named keys, spec §8) into [0, 512): each
// base key gets a block of 8 (one per 3-bit modifier combination), and
// 1+26+namedKeyCount base keys comfortably fit 50*8=400 < 512.
func (k Key) ToUint16() uint16 {
	return k.baseIndex()*8 + uint16(k.Mod&0x7)
}
