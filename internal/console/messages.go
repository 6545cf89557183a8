package console

// Message is a user-facing error printed verbatim by the shell.
type Message string

func (m Message) Error() string {
	return string(m)
}

// Argument validation messages, in the order the handlers check them.
const (
	ErrClassMissing Message = "** class name missing **"
	ErrClassUnknown Message = "** class doesn't exist **"
	ErrIDMissing    Message = "** instance id missing **"
	ErrNoInstance   Message = "** no instance found **"
	ErrAttrMissing  Message = "** attribute name missing **"
	ErrValueMissing Message = "** value missing **"
)

// unknownSyntax builds the message for a line no handler accepts.
func unknownSyntax(line string) Message {
	return Message("*** Unknown syntax: " + line)
}

// quitSignal is returned by quit and EOF to end the loop.
type quitSignal struct{}

func (quitSignal) Error() string { return "quit" }

// ErrQuit ends the command loop.
var ErrQuit error = quitSignal{}
