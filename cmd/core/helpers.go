package core

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nivram913/vmmgr/config"
	"github.com/nivram913/vmmgr/hypervisor/qemu"
	"github.com/nivram913/vmmgr/manager"
)

// BaseHandler provides shared config access for all command handlers.
type BaseHandler struct {
	ConfProvider func() *config.Config
}

// Init returns the command context and validated config in one call.
func (h BaseHandler) Init(cmd *cobra.Command) (context.Context, *config.Config, error) {
	conf, err := h.Conf()
	if err != nil {
		return nil, nil, err
	}
	return CommandContext(cmd), conf, nil
}

// Conf validates and returns the config. All handlers call this first.
func (h BaseHandler) Conf() (*config.Config, error) {
	if h.ConfProvider == nil {
		return nil, fmt.Errorf("config provider is nil")
	}
	conf := h.ConfProvider()
	if conf == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	return conf, nil
}

// CommandContext returns command context, falling back to Background.
func CommandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// InitManager builds the lifecycle manager on the qemu backend.
func InitManager(conf *config.Config) (*manager.Manager, error) {
	m, err := manager.New(conf, qemu.New(conf))
	if err != nil {
		return nil, fmt.Errorf("init manager: %w", err)
	}
	return m, nil
}
