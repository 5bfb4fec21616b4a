package geometry

import "github.com/sirupsen/logrus"

// log geometry模块的日志记录器
var log = logrus.WithField("module", "geometry")
