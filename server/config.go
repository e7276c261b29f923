// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/unixdj/secqr"
)

// DefaultPort is the port to bind to if one is not specified.
const DefaultPort = 8080

const (
	defaultUploadMaxBytes = 10 << 20 // 10MiB
	defaultUploadBurst    = 10
)

// HostPort is simple struct to hold parsed listen/addr strings.
type HostPort struct {
	Host string
	Port int
}

func (hp HostPort) String() string {
	return net.JoinHostPort(hp.Host, strconv.Itoa(hp.Port))
}

// UploadConfig contains settings for the upload endpoint.
type UploadConfig struct {
	// MaxBytes bounds the size of an upload request.
	MaxBytes int64
	// MaxPixels bounds the width times height of an uploaded image,
	// checked before the image is decoded.
	MaxPixels int64
	// Rate is the number of uploads per second allowed from one
	// client address; 0 disables rate limiting.
	Rate float64
	// Burst is the number of uploads a client may make at once.
	Burst int
}

// Config contains the settings of a Server.
type Config struct {
	Listen    HostPort
	LogLevel  uint32
	LogSilent bool
	// Key unmasks uploaded codes.  A Server will not start without
	// one.
	Key    *secqr.Key
	Upload UploadConfig
	// HandleSignals makes Start install a handler stopping the
	// server and exiting on SIGINT or SIGTERM.
	HandleSignals bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("secqr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("key.text", "SECQR_KEY", "SECQR_KEY_TEXT")
	v.BindEnv("key.hex", "SECQR_KEY_HEX")
	return v
}

// NewDefaultConfig creates a new Config with default settings and no
// key.
func NewDefaultConfig() *Config {
	config := &Config{
		Listen: HostPort{Port: DefaultPort},
	}
	config.LogLevel = uint32(log.InfoLevel)
	config.Upload.MaxBytes = defaultUploadMaxBytes
	config.Upload.MaxPixels = secqr.MaxPixels
	config.Upload.Burst = defaultUploadBurst
	return config
}

// GetLogLevel converts the level string to its corresponding int value. It
// returns an error if the level is invalid.
func GetLogLevel(level string) (uint32, error) {
	var l uint32
	switch strings.ToLower(level) {
	case "debug":
		l = uint32(log.DebugLevel)
	case "info":
		l = uint32(log.InfoLevel)
	case "warn":
		l = uint32(log.WarnLevel)
	case "error":
		l = uint32(log.ErrorLevel)
	default:
		return 0, fmt.Errorf("invalid log.level setting %q", level)
	}
	return l, nil
}

// NewConfig creates a new Config with default settings and applies
// settings from the given YAML configuration file, if not empty, and
// from SECQR_ environment variables.  The key is required: key.hex
// (SECQR_KEY_HEX) as 64 hexadecimal digits, or key.text (SECQR_KEY)
// as a string.
func NewConfig(configFile string) (*Config, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read configuration")
		}
	}

	config := NewDefaultConfig()

	if v.IsSet("listen") {
		hp, err := parseListen(v)
		if err != nil {
			return nil, err
		}
		config.Listen = *hp
	}

	if v.IsSet("log.level") {
		level, err := GetLogLevel(v.GetString("log.level"))
		if err != nil {
			return nil, err
		}
		config.LogLevel = level
	}

	if v.IsSet("log.silent") {
		config.LogSilent = v.GetBool("log.silent")
	}

	if err := parseKeyConfig(config, v); err != nil {
		return nil, err
	}

	if err := parseUploadConfig(config, v); err != nil {
		return nil, err
	}

	return config, nil
}

// parseKeyConfig parses the `key` section.
func parseKeyConfig(config *Config, v *viper.Viper) error {
	switch {
	case v.IsSet("key.hex"):
		k, err := secqr.ParseKeyHex(v.GetString("key.hex"))
		if err != nil {
			return errors.Wrap(err, "invalid key.hex setting")
		}
		config.Key = &k
	case v.IsSet("key.text"):
		k := secqr.KeyFromString(v.GetString("key.text"))
		config.Key = &k
	default:
		return errors.New("no key configured: set key.hex or key.text")
	}
	return nil
}

// Validate checks the upload limits.
func (u UploadConfig) Validate() error {
	switch {
	case u.MaxBytes <= 0:
		return fmt.Errorf("invalid upload.max.bytes setting %d", u.MaxBytes)
	case u.MaxPixels <= 0:
		return fmt.Errorf("invalid upload.max.pixels setting %d", u.MaxPixels)
	case u.Rate < 0:
		return fmt.Errorf("invalid upload.rate setting %v", u.Rate)
	case u.Burst < 1:
		return fmt.Errorf("invalid upload.burst setting %d", u.Burst)
	}
	return nil
}

// parseUploadConfig parses the `upload` section.
func parseUploadConfig(config *Config, v *viper.Viper) error {
	if v.IsSet("upload.max.bytes") {
		config.Upload.MaxBytes = v.GetInt64("upload.max.bytes")
	}
	if v.IsSet("upload.max.pixels") {
		config.Upload.MaxPixels = v.GetInt64("upload.max.pixels")
	}
	if v.IsSet("upload.rate") {
		config.Upload.Rate = v.GetFloat64("upload.rate")
	}
	if v.IsSet("upload.burst") {
		config.Upload.Burst = v.GetInt("upload.burst")
	}
	return config.Upload.Validate()
}

// ParseHostPort parses a listen address, host:port or a port alone.
func ParseHostPort(s string) (HostPort, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		p, err := strconv.Atoi(s)
		if err != nil {
			return HostPort{}, fmt.Errorf("could not parse address string %q", s)
		}
		return HostPort{Port: p}, nil
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return HostPort{}, fmt.Errorf("could not parse port %q", port)
	}
	return HostPort{Host: host, Port: p}, nil
}

// parseListen will parse the `listen` option containing the host and port.
func parseListen(v *viper.Viper) (*HostPort, error) {
	switch listenConf := v.Get("listen").(type) {
	// Only a port
	case int, int64:
		return &HostPort{Port: v.GetInt("listen")}, nil
	case string:
		hp, err := ParseHostPort(listenConf)
		if err != nil {
			return nil, err
		}
		return &hp, nil
	default:
		return nil, fmt.Errorf("could not parse listen setting %v", listenConf)
	}
}
