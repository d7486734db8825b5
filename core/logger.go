package core

// Logger logs messages along with optional args.
// expected args: error, map[string]interface{}, session.Session (only the first one is reported as the person).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
