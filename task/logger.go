package task

import "github.com/sirupsen/logrus"

// log task模块的日志记录器
var log = logrus.WithField("module", "task")
