package spillback

import "github.com/sirupsen/logrus"

// log spillback模块的日志记录器
var log = logrus.WithField("module", "spillback")
