package model

// Fragment is what a property contributes to the generated Equal, Hash and
// String methods. Expression builders take the receiver expressions ("v",
// "o") and return Go expressions reading the property's fields.
type Fragment struct {
	// Label is the name shown by String.
	Label string
	// ConditionalInValue properties are shown only when present, even in a Value.
	ConditionalInValue bool
	// Present builds the presence test of a conditional property; nil for
	// properties that are always present in a Value.
	Present func(recv string) string
	// Shown builds the expression rendered by String once present.
	Shown func(recv string) string
	// Equal builds the equality test of the property on two receivers.
	Equal func(a, b string) string
	// Hash builds the hash of the property.
	Hash func(recv string) string
}
