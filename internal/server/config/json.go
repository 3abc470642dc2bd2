package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fintab/internal/flagx"
	"github.com/dmitrijs2005/fintab/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP   *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC   *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        *string         `json:"database_dsn"`
	Environment        *string         `json:"environment"`
	SessionTTL         *timex.Duration `json:"session_ttl"`
	ActivationTokenTTL *timex.Duration `json:"activation_token_ttl"`
	BcryptCost         *int            `json:"bcrypt_cost"`
	WebOrigin          *string         `json:"web_origin"`
	MailFrom           *string         `json:"mail_from"`
	SMTPAddr           *string         `json:"smtp_addr"`
	LogLevel           *string         `json:"log_level"`
}

// parseJson overlays the file named by -c / -config onto config. Keys absent
// from the file keep their current value. No flag means no file.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.Environment, c.Environment)
	setString(&config.WebOrigin, c.WebOrigin)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.SMTPAddr, c.SMTPAddr)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.ActivationTokenTTL != nil {
		config.ActivationTokenTTL = c.ActivationTokenTTL.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
