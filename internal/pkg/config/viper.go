package config

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides: app.name is read from SKILLBRIDGE_APP_NAME.
const EnvPrefix = "SKILLBRIDGE"

// Viper is a Config implementation backed by github.com/spf13/viper.
// Reads are guarded so a file reload never races a request.
type Viper struct {
	mu sync.RWMutex
	v  *viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewViper loads the file at pathFile and watches it for changes. The
// format is inferred from the extension.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()
	v.SetConfigFile(pathFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	vc := &Viper{v: v}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		vc.reload(pathFile)
	})
	v.WatchConfig()

	return vc, nil
}

func (vc *Viper) reload(pathFile string) {
	next := newViper()
	next.SetConfigFile(pathFile)
	if err := next.ReadInConfig(); err != nil {
		slog.Error("config reload failed", "path", filepath.Clean(pathFile), "error", err)
		return
	}

	vc.mu.Lock()
	vc.v = next
	vc.mu.Unlock()

	slog.Info("config reloaded", "path", filepath.Clean(pathFile))
}

// NewViperFromBytes loads configuration from memory. configType is a
// format Viper understands, such as "yaml" or "json".
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetString(key string) string {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.GetString(key)
}

func (vc *Viper) GetBool(key string) bool {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.GetBool(key)
}

func (vc *Viper) GetInt(key string) int {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.GetInt(key)
}

func (vc *Viper) GetInt32(key string) int32 {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.GetInt32(key)
}

func (vc *Viper) GetInt64(key string) int64 {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.GetInt64(key)
}

func (vc *Viper) GetFloat64(key string) float64 {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.GetFloat64(key)
}

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.GetInt64(key)) * time.Second
}

func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.GetInt64(key)) * time.Minute
}

func (vc *Viper) GetArray(key string) []string {
	vc.mu.RLock()
	raw := vc.v.Get(key)
	var items []string
	if s, ok := raw.(string); ok {
		items = strings.Split(s, ",")
	} else if raw != nil {
		items = vc.v.GetStringSlice(key)
	}
	vc.mu.RUnlock()

	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Close implements io.Closer. The file watcher lives as long as the process.
func (vc *Viper) Close() error {
	return nil
}
