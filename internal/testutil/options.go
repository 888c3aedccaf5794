package testutil

import "fmt"

// DocOption appends content to a fixture document.
type DocOption func(*docData)

// Text appends a plain prose line.
func Text(line string) DocOption {
	return func(d *docData) { d.lines = append(d.lines, line) }
}

// Object sets the container for the lines that follow. An empty path clears it.
func Object(path string) DocOption {
	return directive("object", path)
}

// Proc declares a proc signature.
func Proc(sig string) DocOption { return directive("proc", sig) }

// Verb declares a verb signature.
func Verb(sig string) DocOption { return directive("verb", sig) }

// Atom declares an atom signature.
func Atom(sig string) DocOption { return directive("atom", sig) }

// Var declares a var signature.
func Var(sig string) DocOption { return directive("var", sig) }

// Ref appends a line holding one inline reference of the given role.
func Ref(role, text string) DocOption {
	return Text(fmt.Sprintf("See :dm:%s:`%s`.", role, text))
}

func directive(name, arg string) DocOption {
	return func(d *docData) {
		d.lines = append(d.lines, fmt.Sprintf(".. dm:%s:: %s", name, arg), "")
	}
}
