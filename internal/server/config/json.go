package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskhub/internal/flagx"
	"github.com/dmitrijs2005/taskhub/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30m" and integer nanoseconds are accepted. Zero
// values leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	SessionIdleTimeout   timex.Duration `json:"session_idle_timeout"`
	IdleSweepInterval    timex.Duration `json:"idle_sweep_interval"`
	AccountTokenValidity timex.Duration `json:"account_token_validity"`
	ResetTokenValidity   timex.Duration `json:"reset_token_validity"`
	WriteTimeout         timex.Duration `json:"write_timeout"`
	SendQueueSize        int            `json:"send_queue_size"`
	LogBackend           string         `json:"log_backend"`
	LogLevel             string         `json:"log_level"`
	SMTPHost             string         `json:"smtp_host"`
	SMTPPort             int            `json:"smtp_port"`
	SMTPUser             string         `json:"smtp_user"`
	SMTPPassword         string         `json:"smtp_password"`
	MailFrom             string         `json:"mail_from"`
}

// parseJson loads the file named by -c/-config (if any) into config.
// An unreadable file or invalid JSON panics: the server must not start on a
// half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)

	if c.SessionIdleTimeout.IsSet() {
		config.SessionIdleTimeout = c.SessionIdleTimeout.Duration
	}
	if c.IdleSweepInterval.IsSet() {
		config.IdleSweepInterval = c.IdleSweepInterval.Duration
	}
	if c.AccountTokenValidity.IsSet() {
		config.AccountTokenValidity = c.AccountTokenValidity.Duration
	}
	if c.ResetTokenValidity.IsSet() {
		config.ResetTokenValidity = c.ResetTokenValidity.Duration
	}
	if c.WriteTimeout.IsSet() {
		config.WriteTimeout = c.WriteTimeout.Duration
	}
	if c.SendQueueSize > 0 {
		config.SendQueueSize = c.SendQueueSize
	}
	if c.SMTPPort > 0 {
		config.SMTPPort = c.SMTPPort
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
