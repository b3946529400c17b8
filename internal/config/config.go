package config

import (
	"fmt"
)

type Config struct {
	ServerAddr     string
	AllowedOrigins []string
}

func NewConfig(serverAddr string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}

	for _, origin := range allowedOrigins {
		if origin == "" {
			return nil, fmt.Errorf("allowed origin cannot be empty")
		}
	}

	return &Config{
		ServerAddr:     serverAddr,
		AllowedOrigins: allowedOrigins,
	}, nil
}
