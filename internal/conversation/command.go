package conversation

import (
	"math"
	"strconv"
	"strings"
)

// Command is one parsed inbound message. The set of variants is closed.
type Command interface {
	Name() string
	isCommand()
}

type (
	Menu     struct{}
	Products struct{}
	Cart     struct{}
	Checkout struct{}
	Confirm  struct{}
	Add      struct{}
	Cancel   struct{}
	// Remove carries the 1-based cart line; anything unparseable becomes 0.
	Remove struct{ Index int }
	// Number is a bare digit string. Values too large for int saturate.
	Number  struct{ Value int }
	Unknown struct{ Text string }
)

func (Menu) Name() string     { return "MENU" }
func (Products) Name() string { return "PRODUCTS" }
func (Cart) Name() string     { return "CART" }
func (Checkout) Name() string { return "CHECKOUT" }
func (Confirm) Name() string  { return "CONFIRM" }
func (Add) Name() string      { return "ADD" }
func (Cancel) Name() string   { return "CANCEL" }
func (Remove) Name() string   { return "REMOVE" }
func (Number) Name() string   { return "NUMBER" }
func (Unknown) Name() string  { return "UNKNOWN" }

func (Menu) isCommand()     {}
func (Products) isCommand() {}
func (Cart) isCommand()     {}
func (Checkout) isCommand() {}
func (Confirm) isCommand()  {}
func (Add) isCommand()      {}
func (Cancel) isCommand()   {}
func (Remove) isCommand()   {}
func (Number) isCommand()   {}
func (Unknown) isCommand()  {}

// Parse maps raw chat text onto a Command. Matching is case-insensitive and
// ignores surrounding whitespace.
func Parse(raw string) Command {
	text := strings.ToUpper(strings.TrimSpace(raw))

	switch text {
	case "MENU", "START", "HI", "HELLO":
		return Menu{}
	case "PRODUCTS", "CATALOG":
		return Products{}
	case "CART":
		return Cart{}
	case "CHECKOUT":
		return Checkout{}
	case "CONFIRM":
		return Confirm{}
	case "ADD":
		return Add{}
	case "CANCEL":
		return Cancel{}
	}

	if rest, ok := strings.CutPrefix(text, "REMOVE "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || n < 0 {
			n = 0
		}
		return Remove{Index: n}
	}

	if isDigits(text) {
		n, err := strconv.Atoi(text)
		if err != nil {
			n = math.MaxInt
		}
		return Number{Value: n}
	}

	return Unknown{Text: text}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
