package main

import (
	"strings"
	"sync"

	"lens/internal/api"
	"lens/internal/config"
)

type commandContext struct {
	serverFlag *string
	tokenFlag  *string
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(serverFlag, tokenFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		tokenFlag:  tokenFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

// serverURL resolves the daemon base URL: the --server flag wins, otherwise
// the configured public base URL (which falls back to the bind address).
func (c *commandContext) serverURL() (string, error) {
	if c.serverFlag != nil {
		if flag := strings.TrimSpace(*c.serverFlag); flag != "" {
			return flag, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.API.PublicBaseURL, nil
}

func (c *commandContext) apiToken() (string, error) {
	if c.tokenFlag != nil {
		if flag := strings.TrimSpace(*c.tokenFlag); flag != "" {
			return flag, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.API.Token, nil
}

// client builds an API client for the resolved daemon endpoint.
func (c *commandContext) client() (*api.Client, error) {
	base, err := c.serverURL()
	if err != nil {
		return nil, err
	}
	token, err := c.apiToken()
	if err != nil {
		return nil, err
	}
	return api.NewClient(base, token), nil
}
