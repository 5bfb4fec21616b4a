package optimizer

import "github.com/sirupsen/logrus"

// log optimizer模块的日志记录器
var log = logrus.WithField("module", "optimizer")
