package render

// WindowEvents is the input polled from a window since the last Poll.
type WindowEvents struct {
	Quit bool
	// Keys holds printable keys in press order; Escape is reported as 'q'.
	Keys    []rune
	Resized bool
	Width   int
	Height  int
}
