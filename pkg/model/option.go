package model

// OptInt is an optional int that stays comparable, unlike *int. The zero
// value is "absent". Snapshots, routes, and navigation states use it so
// structural equality works in tests and in change detection.
type OptInt struct {
	Value int
	OK    bool
}

// SomeInt returns a present OptInt.
func SomeInt(v int) OptInt {
	return OptInt{Value: v, OK: true}
}

// OptString is an optional string with the same comparability property.
type OptString struct {
	Value string
	OK    bool
}

// SomeString returns a present OptString.
func SomeString(v string) OptString {
	return OptString{Value: v, OK: true}
}
