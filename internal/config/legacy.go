package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"tools.zach/dev/vlccord/internal/migrate"
)

func init() {
	migrate.Config.Register(migrate.Migration{
		Version:     1,
		Description: "import config.json into config.toml",
		Upgrade:     upgradeLegacyJSON,
	})
}

// upgradeLegacyJSON converts the flat config.json written by the previous
// generation into the TOML layout. Keys that are absent or empty keep their
// defaults.
// Numbers and booleans are accepted either as JSON literals or as strings.
func upgradeLegacyJSON(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("legacy config is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	cfg := DefaultConfig()

	if v := doc.Get("CLIENT_ID"); v.Exists() && v.String() != "" {
		cfg.Discord.AppID = v.String()
	}
	if v := doc.Get("VLC_PASSWORD"); v.Exists() {
		// Stored as "user:password"; VLC only uses the password part.
		pw := v.String()
		if i := strings.IndexByte(pw, ':'); i >= 0 {
			pw = pw[i+1:]
		}
		if pw != "" {
			cfg.VLC.Password = pw
		}
	}
	if v := doc.Get("VLC_PORT"); v.Exists() && v.Int() > 0 {
		cfg.VLC.Port = int(v.Int())
	}
	if v := doc.Get("POLLING_INTERVAL"); v.Exists() && v.Int() > 0 {
		cfg.VLC.PollIntervalMS = int(v.Int())
	}
	if v := doc.Get("SHOW_COVER_ART"); v.Exists() {
		cfg.Display.ShowCoverArt = v.Bool()
	}
	if v := doc.Get("THEME"); v.Exists() {
		cfg.Display.Theme = v.String()
	}
	if v := doc.Get("PROVIDER"); v.Exists() && v.String() != "" {
		cfg.Display.Provider = strings.ToLower(v.String())
	}
	if v := doc.Get("CUSTOM_URL"); v.Exists() {
		cfg.Display.CustomURL = v.String()
	}
	if v := doc.Get("BUTTON_LABEL"); v.Exists() && v.String() != "" {
		cfg.Display.ButtonLabel = v.String()
	}
	if v := doc.Get("CUSTOM_JUNK_WORDS"); v.IsArray() {
		for _, w := range v.Array() {
			if s := strings.TrimSpace(w.String()); s != "" {
				cfg.Cleaner.JunkWords = append(cfg.Cleaner.JunkWords, s)
			}
		}
	}
	cfg.Version = 1

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode imported config: %w", err)
	}
	return buf.Bytes(), nil
}
