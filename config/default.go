// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/color"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/key"
	"github.com/vrsync/vrsync/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string

	// Live fields are picked up by a running listener when the config file changes.
	Live bool
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Live        bool   `json:"live"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
		Live:        f.Live,
	})
}

// Parse converts command line words into a value of the field's type.
func (f *Field) Parse(words []string) (any, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: no value given", f.Key)
	}

	switch f.Value.(type) {
	case string:
		return words[0], nil
	case int:
		v, err := strconv.Atoi(words[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", f.Key, words[0])
		}
		return v, nil
	case float64:
		v, err := strconv.ParseFloat(words[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", f.Key, words[0])
		}
		return v, nil
	case bool:
		v, err := strconv.ParseBool(words[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", f.Key, words[0])
		}
		return v, nil
	case []string:
		return words, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %s", f.Key, f.typeName())
	}
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	add := func(field Field) {
		if _, exists := Default[field.Key]; exists {
			panic("Duplicate config key: " + field.Key)
		}
		Default[field.Key] = field
		EnvExposed = append(EnvExposed, field.Key)
	}
	register := func(k string, v any, desc string) {
		add(Field{Key: k, Value: v, Description: desc})
	}
	live := func(k string, v any, desc string) {
		add(Field{Key: k, Value: v, Description: desc, Live: true})
	}

	register(key.ListenPort, constant.DefaultPort, "UDP port to receive control broadcasts on")
	register(key.ListenAddress, constant.DefaultAddress, "Local address to bind the broadcast socket to")
	register(key.ListenBufferSize, constant.MaxDatagramSize, "Receive buffer size in bytes.\nLonger datagrams are truncated")
	register(key.ListenQueueSize, 1, "Undelivered messages kept between frames.\nWhen full the oldest is dropped")
	live(key.SyncDriftToleranceMs, constant.DriftToleranceMs, "Playback drift in milliseconds tolerated before seeking")
	live(key.SyncSmoothingFactor, constant.SmoothingFactor, "Fraction of the remaining orientation distance covered per frame.\nFrom 0 (frozen) to 1 (snap)")
	register(key.SyncLiveReload, true, "Apply drift tolerance and smoothing changes from the config file without restarting")
	register(key.MetricsAddress, "", "Address to serve Prometheus metrics on, e.g. 127.0.0.1:9090.\nEmpty disables metrics")
	register(key.RenderFPS, constant.FrameRate, "Frames per second of the render loop")
	register(key.Player, "virtual", "Playback engine to drive.\nAvailable options are: mpv, virtual")
	register(key.PlayerMPVBinary, "mpv", "Path or name of the mpv executable")
	register(key.HistorySave, true, "Remember the last synchronized state so it can be resumed")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}{{ if .Live }}
{{ blue "Live:" }}    {{ faint "applied to a running listener when the file changes" }}{{ end }}`))
