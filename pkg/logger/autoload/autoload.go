// Package autoload initializes the global logger from LOG_* env vars.
// Import for side effect only.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/chatdesk/support-assistant/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil {
		logx.Init()
		return
	}
	logx.Init(conf)
}
