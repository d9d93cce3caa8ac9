package command

import "strings"

// ParseLine разбирает строку чата на имя команды и аргументы.
// Команда начинается с "/" и отделяется от аргументов пробелами.
// Для строк, не начинающихся с "/", возвращается ok == false.
func ParseLine(line string) (name string, args []string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", nil, false
	}
	parts := strings.Fields(line[1:])
	if len(parts) == 0 {
		return "", nil, false
	}
	return strings.ToLower(parts[0]), parts[1:], true
}
