package core

// Logger is any leveled logger the app can report through.
// Implementations decide what to do with extra args (errors, request users...).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
