package app

// Key binding constants used in the screen key handlers.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyTab       = "tab"
	KeyShiftTab  = "shift+tab"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyEnter     = "enter"
	KeyEsc       = "esc"
	KeyBackspace = "backspace"

	// Login and signup.
	KeySwitchForm = "ctrl+n"

	// List.
	KeyNew     = "n"
	KeyDelete  = "d"
	KeySearch  = "/"
	KeySignOut = "x"
	KeyYes     = "y"
	KeyNo      = "n"
	KeyRefresh = "r"

	// Viewer.
	KeyEdit = "e"

	// Editor.
	KeyRecord = "ctrl+r"
	KeySave   = "ctrl+s"
)
