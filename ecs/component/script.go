package component

// Script drives an entity's Input from a tengo scenario script.
type Script struct {
	Path string
	// Done is set once the script reports it has nothing left to do.
	Done bool
}

var ScriptComponent = NewComponent[Script]()
