package config

import "os"

// PushConfig carries the VAPID key pair for Web Push delivery. It is
// constructed once in main and injected into the notification dispatcher;
// nothing reads the process environment at send time.
type PushConfig struct {
	Subject    string
	PublicKey  string
	PrivateKey string
}

// PushFromEnv reads the VAPID settings from the environment.
func PushFromEnv() PushConfig {
	return PushConfig{
		Subject:    os.Getenv("VAPID_SUBJECT"),
		PublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		PrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
	}
}

// Enabled reports whether push delivery is configured. When false the
// dispatcher silently skips push sends.
func (p PushConfig) Enabled() bool {
	return p.Subject != "" && p.PublicKey != "" && p.PrivateKey != ""
}
