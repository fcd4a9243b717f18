package bot

import (
	"net/url"
	"strings"
)

const argSeparator = "|"

// argEscaper escapes only the separator and the escape character itself,
// which keeps payloads short and lets url.PathUnescape invert it exactly.
var argEscaper = strings.NewReplacer("%", "%25", "|", "%7C")

// Command is a parsed button payload: verb|arg|arg.
type Command struct {
	Verb string
	Args []string
}

// EncodeCommand builds a payload. Arguments may hold any text, including
// the separator.
func EncodeCommand(verb string, args ...string) string {
	var sb strings.Builder
	sb.WriteString(verb)
	for _, a := range args {
		sb.WriteString(argSeparator)
		sb.WriteString(argEscaper.Replace(a))
	}
	return sb.String()
}

// ParseCommand splits and unescapes a payload.
func ParseCommand(raw string) (Command, error) {
	parts := strings.Split(raw, argSeparator)
	cmd := Command{Verb: parts[0]}
	for _, p := range parts[1:] {
		arg, err := url.PathUnescape(p)
		if err != nil {
			return Command{}, err
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

// Arg returns argument i or "" when absent.
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

func (c Command) String() string {
	return EncodeCommand(c.Verb, c.Args...)
}
