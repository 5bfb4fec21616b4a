package measure

import "github.com/sirupsen/logrus"

// log measure模块的日志记录器
var log = logrus.WithField("module", "measure")
