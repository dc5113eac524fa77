package domain

// Command is an external program invocation.
type Command struct {
	// Args holds the program and its arguments. Args[0] is looked up in PATH.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra "KEY=VALUE" pairs merged over the process environment.
	Env []string
}
