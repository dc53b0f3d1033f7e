package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors the subset of [StructuredConfig] that may be
// provided through a JSON file. Durations accept Go duration strings
// ("30m", "24h") as well as raw nanosecond numbers.
type StructuredJSONConfig struct {
	App struct {
		BaseURL                     string   `json:"base_url"`
		SessionCookieName           string   `json:"session_cookie_name"`
		SessionTTL                  Duration `json:"session_ttl"`
		LinkTokenTTL                Duration `json:"link_token_ttl"`
		RecoveryTokenTTL            Duration `json:"recovery_token_ttl"`
		ResetVerificationOnResubmit bool     `json:"reset_verification_on_resubmit"`
		Version                     string   `json:"version"`
	} `json:"app,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Gateways struct {
		Mail struct {
			BaseURL string   `json:"base_url"`
			APIKey  string   `json:"api_key"`
			Timeout Duration `json:"timeout"`
			From    string   `json:"from"`
		} `json:"mail,omitempty"`
		Payments struct {
			BaseURL string   `json:"base_url"`
			APIKey  string   `json:"api_key"`
			Timeout Duration `json:"timeout"`
		} `json:"payments,omitempty"`
		Oracle struct {
			BaseURL string   `json:"base_url"`
			APIKey  string   `json:"api_key"`
			Timeout Duration `json:"timeout"`
			Model   string   `json:"model"`
		} `json:"oracle,omitempty"`
	} `json:"gateways,omitempty"`

	Admin struct {
		Login          string   `json:"login"`
		PassphraseHash string   `json:"passphrase_hash"`
		TokenSignKey   string   `json:"token_sign_key"`
		TokenIssuer    string   `json:"token_issuer"`
		TokenDuration  Duration `json:"token_duration"`
	} `json:"admin,omitempty"`

	Redis struct {
		Address           string `json:"address"`
		AttemptsPerMinute int    `json:"attempts_per_minute"`
	} `json:"redis,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			BaseURL:                     jsonCfg.App.BaseURL,
			SessionCookieName:           jsonCfg.App.SessionCookieName,
			SessionTTL:                  time.Duration(jsonCfg.App.SessionTTL),
			LinkTokenTTL:                time.Duration(jsonCfg.App.LinkTokenTTL),
			RecoveryTokenTTL:            time.Duration(jsonCfg.App.RecoveryTokenTTL),
			ResetVerificationOnResubmit: jsonCfg.App.ResetVerificationOnResubmit,
			Version:                     jsonCfg.App.Version,
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Gateways: Gateways{
			Mail: Mail{
				Gateway: Gateway{
					BaseURL: jsonCfg.Gateways.Mail.BaseURL,
					APIKey:  jsonCfg.Gateways.Mail.APIKey,
					Timeout: time.Duration(jsonCfg.Gateways.Mail.Timeout),
				},
				From: jsonCfg.Gateways.Mail.From,
			},
			Payments: Gateway{
				BaseURL: jsonCfg.Gateways.Payments.BaseURL,
				APIKey:  jsonCfg.Gateways.Payments.APIKey,
				Timeout: time.Duration(jsonCfg.Gateways.Payments.Timeout),
			},
			Oracle: Oracle{
				Gateway: Gateway{
					BaseURL: jsonCfg.Gateways.Oracle.BaseURL,
					APIKey:  jsonCfg.Gateways.Oracle.APIKey,
					Timeout: time.Duration(jsonCfg.Gateways.Oracle.Timeout),
				},
				Model: jsonCfg.Gateways.Oracle.Model,
			},
		},
		Admin: Admin{
			Login:          jsonCfg.Admin.Login,
			PassphraseHash: jsonCfg.Admin.PassphraseHash,
			TokenSignKey:   jsonCfg.Admin.TokenSignKey,
			TokenIssuer:    jsonCfg.Admin.TokenIssuer,
			TokenDuration:  time.Duration(jsonCfg.Admin.TokenDuration),
		},
		Redis: Redis{
			Address:           jsonCfg.Redis.Address,
			AttemptsPerMinute: jsonCfg.Redis.AttemptsPerMinute,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
