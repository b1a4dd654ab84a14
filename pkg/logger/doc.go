// Package logger builds the structured slog loggers shared by the fortune
// handler, the local gateway and the fleet web server. Production and Lambda
// runs log JSON so CloudWatch can index the fields; other environments use
// the text handler.
package logger
