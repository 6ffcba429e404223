package tunnel

import "github.com/sirupsen/logrus"

// log 隧道模块的日志记录器
var log = logrus.WithField("module", "tunnel")
