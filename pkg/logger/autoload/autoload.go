// Package autoload initializes the global logger from LOG_* environment
// variables as a side effect of being imported.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/poyuliu/returns-desk/pkg/logger"
)

func init() {
	var cfg logx.Config
	if err := envconfig.Process("LOG", &cfg); err != nil {
		logx.Init()
		return
	}
	logx.Init(cfg)
}
