package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Plugin errors
	ErrPluginNotFound  = fmt.Errorf("plugin not found")
	ErrPluginLoad      = fmt.Errorf("plugin failed to load")
	ErrDuplicatePlugin = fmt.Errorf("plugin already registered")

	// User interface errors
	ErrUnknownMenuLocation = fmt.Errorf("unknown menu location")
	ErrActionAttached      = fmt.Errorf("action already added to a menu")

	// Library errors
	ErrSongNotFound      = fmt.Errorf("song not found")
	ErrDirectoryNotFound = fmt.Errorf("directory not found")
	ErrEmptyLibrary      = fmt.Errorf("library is empty")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
