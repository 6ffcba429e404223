package entity

import (
	"github.com/hudcostreets/ht-sub001/clock"
	"github.com/hudcostreets/ht-sub001/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	TunnelManager() ITunnelManager
	RuntimeConfig() *config.RuntimeConfig
}
