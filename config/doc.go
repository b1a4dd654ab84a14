// Package config loads the fortune handler configuration from defaults, an
// optional config.yaml, a .env file and environment variables. The Lambda
// deployment only sets environment variables such as MSG_PREFIX and
// LOG_LEVEL; the local gateway and fleet server usually read config.yaml.
package config
