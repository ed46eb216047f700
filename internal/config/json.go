package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonConfig struct {
	App struct {
		Debug        bool   `json:"debug"`
		WriteSupport bool   `json:"write_support"`
		LogPath      string `json:"log_path"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			Path string `json:"path"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Remote struct {
		Resource   string   `json:"resource"`
		User       string   `json:"user"`
		Password   string   `json:"password"`
		SkipVerify bool     `json:"skip_verify"`
		Timeout    Duration `json:"timeout"`
	} `json:"remote,omitempty"`
}

func parseJSON(jsonFilePath string) (*Config, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg jsonConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &Config{
		App: App{
			Debug:        jsonCfg.App.Debug,
			WriteSupport: jsonCfg.App.WriteSupport,
			LogPath:      jsonCfg.App.LogPath,
		},
		Storage: Storage{
			DB: DB{
				Path: jsonCfg.Storage.DB.Path,
			},
		},
		Remote: Remote{
			Resource:   jsonCfg.Remote.Resource,
			User:       jsonCfg.Remote.User,
			Password:   jsonCfg.Remote.Password,
			SkipVerify: jsonCfg.Remote.SkipVerify,
			Timeout:    time.Duration(jsonCfg.Remote.Timeout),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
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
